// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Provides interactive full-screen interface for sharing and scanning crew contacts
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/mycrew/mycrew/models"
	"github.com/mycrew/mycrew/payload"
	"github.com/mycrew/mycrew/store"
	"github.com/mycrew/mycrew/sync"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEdit
	ViewShare
	ViewScan
	ViewReview
	ViewConfirmDelete
	ViewDashboard
)

// Model is the main bubbletea model
type Model struct {
	store    store.Store
	ctx      context.Context
	viewMode ViewMode

	// List view state
	contacts    []models.Contact
	selectedRow int
	marked      map[string]bool
	searching   bool
	searchInput textinput.Model
	searchQuery string

	// Detail view state
	selectedID string

	// Edit view state
	formInputs []textinput.Model
	focusIndex int

	// Share view state
	shareText     string
	shareQR       string
	shareEstimate payload.Estimate
	shareCount    int

	// Scan and review state
	scanInput   textinput.Model
	scanResult  payload.Result
	importer    *sync.Importer
	decisions   []sync.Decision
	pending     []int
	choices     []sync.Choice
	reviewIndex int

	// UI state
	status string
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model
func NewModel(s store.Store) Model {
	search := textinput.New()
	search.Placeholder = "Search"
	search.CharLimit = 100

	scan := textinput.New()
	scan.Placeholder = "Paste the text read from a QR code"
	scan.CharLimit = 8192

	m := Model{
		store:       s,
		ctx:         context.Background(),
		viewMode:    ViewList,
		marked:      make(map[string]bool),
		searchInput: search,
		scanInput:   scan,
		width:       80,
		height:      24,
	}
	m.reload()
	return m
}

// Run starts the full-screen program.
func Run(s store.Store) error {
	_, err := tea.NewProgram(NewModel(s), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	case ViewShare:
		return m.renderShareView()
	case ViewScan:
		return m.renderScanView()
	case ViewReview:
		return m.renderReviewView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	case ViewDashboard:
		return m.renderDashboardView()
	}
	return ""
}

// typing reports whether keys go to a text input.
func (m Model) typing() bool {
	return m.viewMode == ViewEdit || m.viewMode == ViewScan || (m.viewMode == ViewList && m.searching)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if !m.typing() {
			return m, tea.Quit
		}
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewEdit:
		return m.handleEditKeys(msg)
	case ViewShare:
		return m.handleShareKeys(msg)
	case ViewScan:
		return m.handleScanKeys(msg)
	case ViewReview:
		return m.handleReviewKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	case ViewDashboard:
		return m.handleDashboardKeys(msg)
	}

	return m, nil
}

// reload refreshes the contact list for the current search.
func (m *Model) reload() {
	contacts, err := m.store.Search(m.ctx, m.searchQuery, 500)
	if err != nil {
		zap.L().Error("failed to load contacts", zap.Error(err))
		m.err = err
		return
	}
	m.contacts = contacts
	if m.selectedRow >= len(contacts) {
		m.selectedRow = max(len(contacts)-1, 0)
	}
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)
