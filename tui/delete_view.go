// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Asks before a contact is removed from the book
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	dangerColor = lipgloss.Color("9")

	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(dangerColor).
			Padding(1, 3).
			Width(56)

	warningStyle = lipgloss.NewStyle().Foreground(dangerColor).Bold(true)

	keyStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

func (m Model) renderConfirmDeleteView() string {
	contact, err := m.store.Get(m.ctx, m.selectedID)
	if err != nil {
		return fmt.Sprintf("Error loading contact: %v", err)
	}

	lines := []string{
		warningStyle.Render("Delete " + contact.FullName() + "?"),
		"",
		m.renderField("Phone", contact.Phone) + m.renderField("City", contact.City()),
	}
	if n := len(contact.Locations); n > 1 {
		lines = append(lines, fmt.Sprintf("%d work locations will be removed too", n))
	}
	lines = append(lines, "",
		keyStyle.Render("y")+" delete   "+keyStyle.Render("n")+"/esc keep")

	box := confirmBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.store.Delete(m.ctx, m.selectedID); err != nil {
			m.err = err
		} else {
			m.status = "Contact deleted"
			delete(m.marked, m.selectedID)
			m.selectedID = ""
		}
		m.reload()
		m.viewMode = ViewList
	case "n", "N", "esc":
		m.viewMode = ViewDetail
	}

	return m, nil
}
