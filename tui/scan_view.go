// ABOUTME: Scan and review views for TUI
// ABOUTME: Decodes pasted QR text and asks merge, skip or add for each duplicate
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mycrew/mycrew/payload"
	"github.com/mycrew/mycrew/sync"
)

func (m Model) renderScanView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("SCAN"))
	s.WriteString("\n")
	s.WriteString("Paste the text your scanner read from the QR code:\n\n")
	s.WriteString(m.scanInput.View())
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()))
		s.WriteString("\n")
	}

	help := []string{"Enter: Decode", "Esc: Back"}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return s.String()
}

func (m Model) handleScanKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.err = nil
		m.scanInput.Blur()
		m.viewMode = ViewList
		return m, nil
	case "enter":
		m.decodeScan(m.scanInput.Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.scanInput, cmd = m.scanInput.Update(msg)
	return m, cmd
}

// decodeScan classifies text and plans the import. Contacts with no
// duplicate need no review, so an import without duplicates applies at once.
func (m *Model) decodeScan(text string) {
	m.err = nil
	m.scanResult = payload.Decode(strings.TrimSpace(text))
	if !m.scanResult.OK() {
		zap.L().Debug("scan rejected", zap.String("kind", m.scanResult.Kind.String()), zap.Error(m.scanResult.Err))
		m.err = fmt.Errorf("%s", m.scanResult.UserMessage())
		return
	}

	m.importer = sync.NewImporter(m.store)
	decisions, err := m.importer.Plan(m.ctx, m.scanResult.Contacts)
	if err != nil {
		m.err = err
		return
	}

	m.decisions = decisions
	m.pending = m.pending[:0]
	for i, d := range decisions {
		if d.Action == sync.ActionMerge {
			m.pending = append(m.pending, i)
		}
	}
	m.choices = make([]sync.Choice, 0, len(m.pending))
	m.reviewIndex = 0
	m.scanInput.Blur()

	if len(m.pending) == 0 {
		m.applyImport()
		return
	}
	m.viewMode = ViewReview
}

func (m Model) renderReviewView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("REVIEW"))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("%s · duplicate %d of %d\n\n", m.scanResult.UserMessage(), m.reviewIndex+1, len(m.pending)))

	d := m.decisions[m.pending[m.reviewIndex]]
	s.WriteString(fieldLabelStyle.Render("Existing:"))
	s.WriteString("\n")
	s.WriteString(m.renderContactDetail(d.Existing))
	s.WriteString("\n")
	s.WriteString(fieldLabelStyle.Render("Scanned:"))
	s.WriteString("\n")
	s.WriteString(m.renderContactDetail(&d.Incoming))

	help := []string{"m: Merge", "s: Skip", "a: Add as new", "Esc: Cancel import"}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return s.String()
}

func (m Model) handleReviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var choice sync.Choice
	switch msg.String() {
	case "m", "enter":
		choice = sync.ChoiceMerge
	case "s":
		choice = sync.ChoiceSkip
	case "a":
		choice = sync.ChoiceAdd
	case "esc":
		m.status = "Import cancelled"
		m.viewMode = ViewList
		return m, nil
	default:
		return m, nil
	}

	m.choices = append(m.choices, choice)
	m.reviewIndex++
	if m.reviewIndex >= len(m.pending) {
		m.applyImport()
	}
	return m, nil
}

// applyImport runs the planned decisions, answering duplicates with the
// choices collected in review order.
func (m *Model) applyImport() {
	choices := m.choices
	next := 0
	resolve := func(context.Context, sync.Decision) (sync.Choice, error) {
		if next >= len(choices) {
			return sync.ChoiceSkip, nil
		}
		c := choices[next]
		next++
		return c, nil
	}

	summary, err := m.importer.Apply(m.ctx, m.decisions, resolve)
	if err != nil {
		m.err = err
	} else {
		m.status = "Imported: " + summary.String()
		zap.L().Info("scan imported", zap.Stringer("summary", summary))
	}
	m.reload()
	m.viewMode = ViewList
}
