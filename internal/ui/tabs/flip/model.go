// Package flip provides the main tab where the user asks a question and
// flips the coin.
package flip

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/coinflip-tui/internal/app"
	"github.com/j-veylop/coinflip-tui/internal/ui/components"
)

// maxQuestionLen bounds the question text.
const maxQuestionLen = 120

type keyMap struct {
	Flip    key.Binding
	Ask     key.Binding
	Clear   key.Binding
	Upgrade key.Binding
	Submit  key.Binding
	Cancel  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Flip: key.NewBinding(
			key.WithKeys("f", " ", "enter"),
			key.WithHelp("f/space", "flip"),
		),
		Ask: key.NewBinding(
			key.WithKeys("e", "/"),
			key.WithHelp("e", "ask a question"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear question"),
		),
		Upgrade: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "go pro"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "flip"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model is the flip tab.
type Model struct {
	state  *app.State
	keys   keyMap
	input  textinput.Model
	coin   components.Coin
	bar    components.FlipsBar
	width  int
	height int

	question string
	asked    string
	editing  bool
}

// New creates the flip tab.
func New(state *app.State) *Model {
	ti := textinput.New()
	ti.Placeholder = "Should I...?"
	ti.CharLimit = maxQuestionLen
	ti.Prompt = "? "

	return &Model{
		state: state,
		keys:  defaultKeyMap(),
		input: ti,
		coin:  components.NewCoin(),
		bar:   components.NewFlipsBar(),
	}
}

// Init implements app.Tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// CapturingInput reports whether the question field has focus.
func (m *Model) CapturingInput() bool {
	return m.editing
}

// Question returns the question that will go with the next flip.
func (m *Model) Question() string {
	return m.question
}

// Update handles messages for the flip tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.handleEditingKey(msg)
		}
		return m.handleKeyMsg(msg)

	case app.FlipResultMsg:
		if !msg.Result.Accepted() {
			return m, nil
		}
		m.asked = msg.Result.Record.Question
		m.question = ""
		m.input.Reset()
		return m, m.coin.Toss(msg.Result.Record.Result, m.state.Settings().AnimationsEnabled)

	case app.HistoryChangedMsg:
		if m.state.LastFlip() == nil {
			m.coin.Reset()
			m.asked = ""
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.coin, cmd = m.coin.Update(msg)
		return m, cmd

	default:
		if m.editing {
			// Cursor blinks
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Flip):
		return m, m.requestFlip()

	case key.Matches(msg, m.keys.Ask):
		m.editing = true
		m.input.SetValue(m.question)
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Clear):
		m.question = ""
		m.input.Reset()

	case key.Matches(msg, m.keys.Upgrade):
		if !m.state.Entitlement().IsPro {
			return m, app.Emit(app.ShowPaywallMsg{})
		}
	}
	return m, nil
}

func (m *Model) handleEditingKey(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.question = m.input.Value()
		m.stopEditing()
		return m, m.requestFlip()

	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) stopEditing() {
	m.editing = false
	m.input.Blur()
}

// requestFlip asks the app to flip unless a flip is already running.
func (m *Model) requestFlip() tea.Cmd {
	if m.coin.Tossing() || m.state.IsFlipping() {
		return nil
	}
	return app.Emit(app.FlipRequestMsg{Question: m.question})
}

// SetSize implements app.Tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = min(max(width-12, 20), maxQuestionLen)
}

// ShortHelp implements app.Tab.
func (m *Model) ShortHelp() []key.Binding {
	if m.editing {
		return []key.Binding{m.keys.Submit, m.keys.Cancel}
	}
	return []key.Binding{m.keys.Flip, m.keys.Ask}
}

// FullHelp implements app.Tab.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Flip, m.keys.Ask, m.keys.Clear},
		{m.keys.Upgrade},
	}
}
