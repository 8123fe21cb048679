package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mycrew/mycrew/models"
)

// Form field order.
const (
	fieldFirstName = iota
	fieldLastName
	fieldTitles
	fieldPhone
	fieldEmail
	fieldCountry
	fieldRegion
	fieldNotes
	fieldCount
)

// titleSeparator splits the titles field, matching the CSV export.
const titleSeparator = "/"

func (m Model) renderEditView() string {
	var s strings.Builder

	if m.selectedID == "" {
		s.WriteString(titleStyle.Render("NEW CONTACT"))
	} else {
		s.WriteString(titleStyle.Render("EDIT CONTACT"))
	}
	s.WriteString("\n\n")

	for i, input := range m.formInputs {
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(input.View())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}
	s.WriteString(m.renderEditHelp())

	return s.String()
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab: Next field",
		"Shift+Tab: Previous",
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.err = nil
		if m.selectedID == "" {
			m.viewMode = ViewList
		} else {
			m.viewMode = ViewDetail
		}
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex + len(m.formInputs) - 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "enter":
		id, err := m.saveContact()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.selectedID = id
		m.status = "Saved"
		m.reload()
		m.viewMode = ViewDetail
		return m, nil
	}

	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *Model) initFormInputs() {
	placeholders := [fieldCount]string{
		"First name", "Last name", "Job titles (separated by /)", "Phone",
		"Email", "Country", "Region", "Notes",
	}
	limits := [fieldCount]int{100, 100, 200, 30, 100, 60, 60, 500}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholders[i]
		inputs[i].CharLimit = limits[i]
	}

	// If editing, populate fields
	if m.selectedID != "" {
		contact, _ := m.store.Get(m.ctx, m.selectedID)
		if contact != nil {
			inputs[fieldFirstName].SetValue(contact.FirstName)
			inputs[fieldLastName].SetValue(contact.LastName)
			inputs[fieldTitles].SetValue(strings.Join(models.CanonicalJobTitles(*contact), " "+titleSeparator+" "))
			inputs[fieldPhone].SetValue(contact.Phone)
			inputs[fieldEmail].SetValue(contact.Email)
			inputs[fieldNotes].SetValue(contact.Notes)
			if loc := contact.PrimaryLocation(); loc != nil {
				inputs[fieldCountry].SetValue(loc.Country)
				inputs[fieldRegion].SetValue(loc.Region)
			}
		}
	}

	m.formInputs = inputs
	m.focusIndex = 0
	m.updateFormFocus()
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

func (m Model) value(field int) string {
	return strings.TrimSpace(m.formInputs[field].Value())
}

// saveContact creates or updates the contact from the form. The country and
// region fields edit the primary location; other locations are kept.
func (m Model) saveContact() (string, error) {
	contact := &models.Contact{}
	if m.selectedID != "" {
		existing, err := m.store.Get(m.ctx, m.selectedID)
		if err != nil {
			return "", err
		}
		contact = existing
	}

	contact.FirstName = m.value(fieldFirstName)
	contact.LastName = m.value(fieldLastName)
	contact.Phone = m.value(fieldPhone)
	contact.Email = m.value(fieldEmail)
	contact.Notes = m.value(fieldNotes)
	if contact.FirstName == "" {
		return "", models.ErrMissingFirstName
	}

	contact.JobTitle = ""
	contact.JobTitles = nil
	for _, t := range strings.Split(m.value(fieldTitles), titleSeparator) {
		if t = strings.TrimSpace(t); t != "" {
			contact.JobTitles = append(contact.JobTitles, t)
		}
	}

	country, region := m.value(fieldCountry), m.value(fieldRegion)
	if loc := contact.PrimaryLocation(); loc != nil {
		if country == "" {
			contact.Locations = removePrimary(contact.Locations)
		} else {
			loc.Country, loc.Region = country, region
		}
	} else if country != "" {
		contact.Locations = append(contact.Locations, models.WorkLocation{Country: country, Region: region, IsPrimary: true})
	}

	if m.selectedID == "" {
		return m.store.Create(m.ctx, contact)
	}
	return contact.ID, m.store.Update(m.ctx, contact)
}

func removePrimary(locs []models.WorkLocation) []models.WorkLocation {
	out := locs[:0]
	for _, l := range locs {
		if !l.IsPrimary {
			out = append(out, l)
		}
	}
	return out
}
