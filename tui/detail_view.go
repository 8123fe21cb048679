package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mycrew/mycrew/models"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(14)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("CONTACT"))
	s.WriteString("\n\n")

	contact, err := m.store.Get(m.ctx, m.selectedID)
	if err != nil {
		s.WriteString(fmt.Sprintf("Error: %v", err))
	} else {
		s.WriteString(m.renderContactDetail(contact))
	}

	s.WriteString("\n")
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderContactDetail(contact *models.Contact) string {
	var s strings.Builder

	s.WriteString(m.renderField("Name", contact.FullName()))
	s.WriteString(m.renderField("Titles", strings.Join(models.CanonicalJobTitles(*contact), ", ")))
	s.WriteString(m.renderField("Phone", contact.Phone))
	s.WriteString(m.renderField("Email", contact.Email))
	if contact.IsFavorite {
		s.WriteString(m.renderField("Favorite", "★"))
	}
	s.WriteString(m.renderField("Notes", contact.Notes))

	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render("WORK LOCATIONS"))
	s.WriteString("\n")

	if len(contact.Locations) == 0 {
		s.WriteString("  -\n")
	}
	for _, loc := range contact.Locations {
		s.WriteString(fmt.Sprintf("  • %s\n", describeLocation(loc)))
	}

	return s.String()
}

func describeLocation(loc models.WorkLocation) string {
	place := loc.Country
	if loc.Region != "" {
		place = loc.Region + ", " + loc.Country
	}

	var tags []string
	if loc.IsPrimary {
		tags = append(tags, "primary")
	}
	if loc.IsLocalResident {
		tags = append(tags, "resident")
	}
	if loc.HasVehicle {
		tags = append(tags, "vehicle")
	}
	if loc.IsHoused {
		tags = append(tags, "housed")
	}
	if len(tags) > 0 {
		place += " (" + strings.Join(tags, ", ") + ")"
	}
	return place
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"e: Edit",
		"s: Share",
		"d: Delete",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
	case "e":
		m.initFormInputs()
		m.viewMode = ViewEdit
	case "s":
		if c, err := m.store.Get(m.ctx, m.selectedID); err == nil {
			m.prepareShare([]models.Contact{*c})
			m.viewMode = ViewShare
		} else {
			m.err = err
		}
	case "d":
		m.viewMode = ViewConfirmDelete
	}

	return m, nil
}
