package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mycrew/mycrew/models"
	"github.com/mycrew/mycrew/payload"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("MYCREW"))
	s.WriteString("\n")

	if m.searching {
		s.WriteString(m.searchInput.View())
		s.WriteString("\n")
	} else if m.searchQuery != "" {
		s.WriteString(fmt.Sprintf("Search: %s\n", m.searchQuery))
	}
	s.WriteString("\n")

	s.WriteString(m.renderContactsTable())
	s.WriteString("\n")

	if n := len(m.marked); n > 0 {
		s.WriteString(fmt.Sprintf("%d selected (max %d per QR code)\n", n, payload.MaxBatchSize))
	}
	s.WriteString(m.renderStatus())
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderStatus() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	case m.status != "":
		return statusStyle.Render(m.status) + "\n"
	}
	return ""
}

func (m Model) renderContactsTable() string {
	columns := []table.Column{
		{Title: " ", Width: 2},
		{Title: "Name", Width: 26},
		{Title: "Titles", Width: 24},
		{Title: "City", Width: 16},
		{Title: "★", Width: 2},
	}

	var rows []table.Row
	for i := range m.contacts {
		c := &m.contacts[i]
		mark, fav := "", ""
		if m.marked[c.ID] {
			mark = "✓"
		}
		if c.IsFavorite {
			fav = "★"
		}
		rows = append(rows, table.Row{
			mark,
			c.FullName(),
			strings.Join(models.CanonicalJobTitles(*c), ", "),
			c.City(),
			fav,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Space: Select",
		"Enter: Details",
		"s: Share",
		"i: Scan",
		"n: New",
		"f: Favorite",
		"/: Search",
		"g: Dashboard",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	m.status, m.err = "", nil
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.contacts)-1 {
			m.selectedRow++
		}
	case " ", "x":
		if c := m.current(); c != nil {
			if m.marked[c.ID] {
				delete(m.marked, c.ID)
			} else {
				m.marked[c.ID] = true
			}
		}
	case "enter":
		if c := m.current(); c != nil {
			m.selectedID = c.ID
			m.viewMode = ViewDetail
		}
	case "s":
		m.prepareShare(m.shareSelection())
		m.viewMode = ViewShare
	case "i":
		m.scanInput.SetValue("")
		m.scanInput.Focus()
		m.viewMode = ViewScan
		return m, nil
	case "n":
		m.selectedID = ""
		m.initFormInputs()
		m.viewMode = ViewEdit
	case "f":
		if c := m.current(); c != nil {
			if err := m.store.SetFavorite(m.ctx, c.ID, !c.IsFavorite); err != nil {
				m.err = err
			}
			m.reload()
		}
	case "g":
		m.viewMode = ViewDashboard
	case "/":
		m.searching = true
		m.searchInput.SetValue(m.searchQuery)
		m.searchInput.Focus()
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchQuery = strings.TrimSpace(m.searchInput.Value())
		m.searching = false
		m.searchInput.Blur()
		m.selectedRow = 0
		m.reload()
		return m, nil
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) current() *models.Contact {
	if m.selectedRow < len(m.contacts) {
		return &m.contacts[m.selectedRow]
	}
	return nil
}

// shareSelection returns the marked contacts in list order, or the contact
// under the cursor when nothing is marked.
func (m Model) shareSelection() []models.Contact {
	var out []models.Contact
	for _, c := range m.contacts {
		if m.marked[c.ID] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		if c := m.current(); c != nil {
			out = append(out, *c)
		}
	}
	return out
}
