// ABOUTME: QR share view for TUI
// ABOUTME: Draws the selected contacts as a terminal QR code with a capacity warning
package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mycrew/mycrew/models"
	"github.com/mycrew/mycrew/payload"
	"github.com/mycrew/mycrew/qr"
)

// prepareShare encodes contacts and renders the terminal code. Failures are
// left in m.err for the view.
func (m *Model) prepareShare(contacts []models.Contact) {
	m.shareText, m.shareQR, m.err = "", "", nil
	m.shareCount = len(contacts)
	m.shareEstimate = payload.EstimateContacts(contacts)

	text, err := payload.Encode(contacts)
	if err != nil {
		var capErr *payload.CapacityError
		if errors.As(err, &capErr) {
			zap.L().Debug("share over capacity", zap.Int("requested", capErr.Requested), zap.Int("suggested", capErr.SuggestedCount))
		}
		m.err = err
		return
	}

	art, err := qr.RenderTerminal(text, m.shareEstimate.RenderLevel)
	if err != nil {
		m.err = err
		return
	}
	m.shareText = text
	m.shareQR = art
}

func (m Model) renderShareView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("SHARE"))
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()))
		s.WriteString("\n")
		s.WriteString(m.renderShareHelp())
		return s.String()
	}

	s.WriteString(m.shareQR)
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("%d contact(s), %d bytes", m.shareCount, len(m.shareText)))
	if lvl := m.shareEstimate.RenderLevel; lvl != "" {
		s.WriteString(fmt.Sprintf(", level %s", lvl))
	}
	s.WriteString("\n")

	if !m.shareEstimate.Feasible {
		s.WriteString(errorStyle.Render("⚠ this code may be too dense to scan; share fewer contacts"))
		s.WriteString("\n")
	} else if m.shareEstimate.RenderLevel == payload.LevelLow {
		s.WriteString(errorStyle.Render("⚠ near the QR capacity limit"))
		s.WriteString("\n")
	}

	s.WriteString(m.renderShareHelp())
	return s.String()
}

func (m Model) renderShareHelp() string {
	help := []string{
		"Esc: Back",
		"c: Clear selection",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleShareKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.err = nil
		m.viewMode = ViewList
	case "c":
		m.err = nil
		m.marked = make(map[string]bool)
		m.viewMode = ViewList
	}
	return m, nil
}
