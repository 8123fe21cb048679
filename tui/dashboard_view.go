package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mycrew/mycrew/viz"
)

func (m Model) renderDashboardView() string {
	var s strings.Builder

	contacts, err := m.store.GetAll(m.ctx)
	if err != nil {
		s.WriteString(fmt.Sprintf("Error: %v\n", err))
	} else {
		s.WriteString(viz.RenderDashboard(viz.GenerateDashboardStats(contacts)))
	}

	help := []string{
		"Esc: Back",
		"q: Quit",
	}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return s.String()
}

func (m Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.viewMode = ViewList
	}
	return m, nil
}
