// Package account provides the account tab: trial status, plans, settings
// and build information.
package account

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/coinflip-tui/internal/app"
	"github.com/j-veylop/coinflip-tui/internal/config"
	"github.com/j-veylop/coinflip-tui/internal/purchase"
)

// keyMap defines the key bindings specific to the account tab.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Buy        key.Binding
	Restore    key.Binding
	Sound      key.Binding
	Animations key.Binding
	DevReset   key.Binding
}

// defaultKeyMap returns the default key bindings for the account tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous plan"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next plan"),
		),
		Buy: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "buy plan"),
		),
		Restore: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "restore purchases"),
		),
		Sound: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle sound"),
		),
		Animations: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle animations"),
		),
		DevReset: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "reset trial (dev)"),
		),
	}
}

// Model represents the account tab state.
type Model struct {
	state     *app.State
	config    *config.Config
	width     int
	height    int
	keys      keyMap
	viewport  viewport.Model
	planIndex int
}

// New creates a new account model. cfg may be nil.
func New(state *app.State, cfg *config.Config) *Model {
	return &Model{
		state:    state,
		config:   cfg,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the account tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the account tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	pro := m.state.Entitlement().IsPro

	switch {
	case key.Matches(keyMsg, m.keys.Up) && !pro:
		m.planIndex = (m.planIndex - 1 + len(purchase.Plans)) % len(purchase.Plans)

	case key.Matches(keyMsg, m.keys.Down) && !pro:
		m.planIndex = (m.planIndex + 1) % len(purchase.Plans)

	case key.Matches(keyMsg, m.keys.Buy) && !pro:
		if m.state.IsPurchasing() {
			return m, nil
		}
		return m, app.Emit(app.PurchaseRequestMsg{Plan: purchase.Plans[m.planIndex].ID})

	case key.Matches(keyMsg, m.keys.Restore):
		return m, app.Emit(app.RestoreRequestMsg{})

	case key.Matches(keyMsg, m.keys.Sound):
		return m, app.Emit(app.SettingsRequestMsg{Action: app.ToggleSound})

	case key.Matches(keyMsg, m.keys.Animations):
		return m, app.Emit(app.SettingsRequestMsg{Action: app.ToggleAnimations})

	case key.Matches(keyMsg, m.keys.DevReset):
		if m.state.Snapshot().DevTools {
			return m, app.Emit(app.DevResetRequestMsg{})
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(keyMsg)
		return m, cmd
	}

	return m, nil
}

// SetSize sets the available size for the account tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.state.Entitlement().IsPro {
		return []key.Binding{m.keys.Sound, m.keys.Animations}
	}
	return []key.Binding{m.keys.Buy, m.keys.Restore}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	groups := [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.Buy, m.keys.Restore},
		{m.keys.Sound, m.keys.Animations},
	}
	if m.state.Snapshot().DevTools {
		groups = append(groups, []key.Binding{m.keys.DevReset})
	}
	return groups
}
