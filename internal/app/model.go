// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/coinflip-tui/internal/flip"
	"github.com/j-veylop/coinflip-tui/internal/logger"
	"github.com/j-veylop/coinflip-tui/internal/purchase"
	"github.com/j-veylop/coinflip-tui/internal/services"
	"github.com/j-veylop/coinflip-tui/internal/ui/components"
	"github.com/j-veylop/coinflip-tui/internal/ui/styles"
	"github.com/j-veylop/coinflip-tui/internal/usage"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabFlip is the ID for the flip tab.
	TabFlip TabID = iota
	// TabHistory is the ID for the history tab.
	TabHistory
	// TabAccount is the ID for the account tab.
	TabAccount
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabFlip:
		return "Flip"
	case TabHistory:
		return "History"
	case TabAccount:
		return "Account"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// InputCapturer is implemented by tabs with a focused text field. While it
// reports true, global single-letter shortcuts go to the tab instead.
type InputCapturer interface {
	CapturingInput() bool
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1      key.Binding
	Tab2      key.Binding
	Tab3      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Escape    key.Binding
	Restore   key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	km = setNavigationKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "flip"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "history"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "account"))
	k.NextTab = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Refresh = key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	k.ForceQuit = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	k.Restore = key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "restore purchases"))
	return k
}

func setNavigationKeys(k KeyMap) KeyMap {
	k.Up = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	k.Down = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	k.Enter = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3},
		{k.NextTab, k.PrevTab},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Tab bar styles
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style

	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Content lipgloss.Style
	Help    lipgloss.Style
	Spinner lipgloss.Style
	Toast   lipgloss.Style

	// Common styles
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#C77800", Dark: "#F5A623"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 2)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Help = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.Spinner = lipgloss.NewStyle().Foreground(highlight)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)

	return s
}

// Model is the main application model.
type Model struct {
	// Tab management
	activeTab TabID
	tabs      []Tab
	tabNames  []string

	// Shared state
	state    *State
	services *services.Manager
	keymap   KeyMap
	styles   Styles

	// UI components
	spinner spinner.Model

	// Window dimensions
	width  int
	height int

	// UI state
	showHelp         bool
	ready            bool
	welcomeDismissed bool
	planIndex        int

	// Service subscription
	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Model{
		activeTab: TabFlip,
		tabNames:  []string{TabFlip.String(), TabHistory.String(), TabAccount.String()},
		tabs:      make([]Tab, 3), // Placeholder - tabs will be set externally
		state:     NewState(),
		services:  mgr,
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetServices returns the service manager.
func (m *Model) GetServices() *services.Manager {
	return m.services
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// ShowingHelp reports whether the help overlay is open.
func (m *Model) ShowingHelp() bool {
	return m.showHelp
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services), loadSnapshotCmd(m.services))
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	forward := true

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
	case tea.KeyMsg:
		cmd, handled := m.handleKeyMsg(msg)
		cmds = append(cmds, cmd)
		forward = !handled
	case spinner.TickMsg:
		cmds = append(cmds, m.handleSpinnerTick(msg))
	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if forward {
		cmds = append(cmds, m.forwardToTabs(msg))
	}

	return m, tea.Batch(cmds...)
}

// forwardToTabs delivers msg to the active tab. Animation ticks and data
// changes go to every tab so background tabs stay current.
func (m *Model) forwardToTabs(msg tea.Msg) tea.Cmd {
	switch msg.(type) {
	case spinner.TickMsg, SnapshotLoadedMsg, FlipResultMsg, HistoryChangedMsg, SettingsResultMsg:
		var cmds []tea.Cmd
		for i := range m.tabs {
			cmds = append(cmds, m.updateTab(TabID(i), msg))
		}
		return tea.Batch(cmds...)
	default:
		return m.updateTab(m.activeTab, msg)
	}
}

func (m *Model) updateTab(id TabID, msg tea.Msg) tea.Cmd {
	if int(id) >= len(m.tabs) || m.tabs[id] == nil {
		return nil
	}
	var cmd tea.Cmd
	m.tabs[id], cmd = m.tabs[id].Update(msg)
	return cmd
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		cmds = append(cmds, m.handleTick()...)
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEventMsg(msg)...)
	case SnapshotLoadedMsg:
		m.state.SetSnapshot(msg.Snapshot)
		m.state.ClearLoadingNotification()
	case FlipRequestMsg:
		cmds = append(cmds, m.handleFlipRequest(msg))
	case FlipResultMsg:
		cmds = append(cmds, m.handleFlipResult(msg)...)
	case PurchaseRequestMsg:
		cmds = append(cmds, m.handlePurchaseRequest(msg))
	case PurchaseResultMsg:
		cmds = append(cmds, m.handlePurchaseResult(msg)...)
	case RestoreRequestMsg:
		cmds = append(cmds, m.handleRestoreRequest())
	case RestoreResultMsg:
		cmds = append(cmds, m.handleRestoreResult(msg)...)
	case ClearHistoryRequestMsg:
		if m.services != nil {
			cmds = append(cmds, clearHistoryCmd(m.services))
		}
	case ClearHistoryResultMsg:
		cmds = append(cmds, m.handleClearHistoryResult(msg)...)
	case DevResetRequestMsg:
		if m.services != nil {
			cmds = append(cmds, devResetCmd(m.services))
		}
	case DevResetResultMsg:
		cmds = append(cmds, m.handleDevResetResult(msg)...)
	case SettingsRequestMsg:
		if m.services != nil {
			cmds = append(cmds, settingsCmd(m.services, msg.Action))
		}
	case SettingsResultMsg:
		cmds = append(cmds, m.handleSettingsResult(msg))
	case ShowPaywallMsg:
		m.state.ShowSoftPaywall()
	case AddNotificationMsg:
		cmds = append(cmds, m.handleAddNotification(msg))
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ErrorMsg:
		cmds = append(cmds, NotifyError(fmt.Sprintf("%s: %v", msg.Context, msg.Error)))
	case TabSwitchMsg:
		cmds = append(cmds, m.switchTab(msg.Tab))
	}
	return cmds
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

func (m *Model) handleSpinnerTick(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return cmd
}

func (m *Model) handleTick() []tea.Cmd {
	m.state.ClearExpiredNotifications()
	cmds := []tea.Cmd{defaultTickCmd()}
	if m.services != nil {
		cmds = append(cmds, refreshCmd(m.services))
	}
	return cmds
}

func (m *Model) handleServiceEventMsg(msg ServiceEventMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.handleServiceEvent(msg.Event); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.eventChannel != nil {
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	}
	return cmds
}

func (m *Model) handleFlipRequest(msg FlipRequestMsg) tea.Cmd {
	if m.services == nil || m.state.IsFlipping() {
		return nil
	}
	m.state.SetLoading("flip", true)
	return flipCmd(m.services, msg.Question)
}

func (m *Model) handleFlipResult(msg FlipResultMsg) []tea.Cmd {
	m.state.SetLoading("flip", false)
	m.state.RecordFlip(msg.Result)

	var cmds []tea.Cmd
	switch {
	case msg.Result.Accepted():
		if !msg.Result.Entitlement.IsPro && msg.Result.Usage.RemainingFlips == 1 {
			cmds = append(cmds, NotifyInfo("1 free flip left today"))
		}
	case errors.Is(msg.Err, flip.ErrTrialExpired), errors.Is(msg.Err, flip.ErrDailyLimitReached):
		m.planIndex = 0
	case msg.Err != nil:
		cmds = append(cmds, NotifyError(fmt.Sprintf("Flip failed: %v", msg.Err)))
	}

	if m.services != nil {
		cmds = append(cmds, loadSnapshotCmd(m.services))
	}
	return cmds
}

func (m *Model) handlePurchaseRequest(msg PurchaseRequestMsg) tea.Cmd {
	if m.services == nil || m.state.IsPurchasing() {
		return nil
	}
	m.state.SetLoading("purchase", true)
	m.state.SetLoadingNotification("Contacting store...")
	return purchaseCmd(m.services, msg.Plan)
}

func (m *Model) handlePurchaseResult(msg PurchaseResultMsg) []tea.Cmd {
	m.state.SetLoading("purchase", false)
	m.state.ClearLoadingNotification()

	var cmds []tea.Cmd
	switch {
	case errors.Is(msg.Error, purchase.ErrNotConfirmed):
		cmds = append(cmds, NotifyWarning("Purchase was not completed"))
	case msg.Error != nil:
		logger.Warn("purchase failed", "plan", string(msg.Plan), "error", msg.Error)
		cmds = append(cmds, NotifyError(fmt.Sprintf("Purchase failed: %v", msg.Error)))
	default:
		cmds = append(cmds, NotifySuccess("Welcome to Pro! Unlimited flips unlocked"))
	}

	if m.services != nil {
		cmds = append(cmds, loadSnapshotCmd(m.services))
	}
	return cmds
}

func (m *Model) handleRestoreRequest() tea.Cmd {
	if m.services == nil || m.state.IsPurchasing() {
		return nil
	}
	m.state.SetLoading("purchase", true)
	m.state.SetLoadingNotification("Restoring purchases...")
	return restoreCmd(m.services)
}

func (m *Model) handleRestoreResult(msg RestoreResultMsg) []tea.Cmd {
	m.state.SetLoading("purchase", false)
	m.state.ClearLoadingNotification()

	var cmds []tea.Cmd
	switch {
	case errors.Is(msg.Error, purchase.ErrNotConfirmed):
		cmds = append(cmds, NotifyInfo("No previous purchase found"))
	case msg.Error != nil:
		cmds = append(cmds, NotifyError(fmt.Sprintf("Restore failed: %v", msg.Error)))
	default:
		cmds = append(cmds, NotifySuccess("Purchase restored"))
	}

	if m.services != nil {
		cmds = append(cmds, loadSnapshotCmd(m.services))
	}
	return cmds
}

func (m *Model) handleClearHistoryResult(msg ClearHistoryResultMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if msg.Error != nil {
		cmds = append(cmds, NotifyError(fmt.Sprintf("Failed to clear history: %v", msg.Error)))
	} else {
		m.state.ClearLastFlip()
		cmds = append(cmds, NotifySuccess("History cleared"))
	}
	cmds = append(cmds, Emit(HistoryChangedMsg{}))
	if m.services != nil {
		cmds = append(cmds, loadSnapshotCmd(m.services))
	}
	return cmds
}

func (m *Model) handleDevResetResult(msg DevResetResultMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if msg.Error != nil {
		cmds = append(cmds, NotifyError(msg.Error.Error()))
	} else {
		m.state.ClearLastFlip()
		cmds = append(cmds, NotifySuccess("Trial and daily flips reset"))
	}
	if m.services != nil {
		cmds = append(cmds, loadSnapshotCmd(m.services))
	}
	return cmds
}

func (m *Model) handleSettingsResult(msg SettingsResultMsg) tea.Cmd {
	if msg.Error != nil {
		return NotifyError(fmt.Sprintf("Failed to save settings: %v", msg.Error))
	}
	m.state.SetSettings(msg.Settings)

	switch msg.Action {
	case ToggleSound:
		return NotifyInfo("Sound " + onOff(msg.Settings.SoundEnabled))
	case ToggleAnimations:
		return NotifyInfo("Animations " + onOff(msg.Settings.AnimationsEnabled))
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m *Model) handleAddNotification(msg AddNotificationMsg) tea.Cmd {
	id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
	if msg.Duration > 0 {
		return clearNotificationCmd(id, msg.Duration)
	}
	return nil
}

func (m *Model) switchTab(id TabID) tea.Cmd {
	if int(id) < 0 || int(id) >= len(m.tabs) {
		return nil
	}
	m.activeTab = id
	m.updateTabSizes()
	return m.updateTab(id, TabSwitchMsg{Tab: id})
}

func (m *Model) updateTabSizes() {
	// navbar (2 lines) + footer (1 line) + spacing
	contentHeight := max(m.height-4, 0)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) welcomeVisible() bool {
	return m.state.Loaded() && !m.welcomeDismissed && !m.state.Settings().HasCompletedOnboarding
}

// handleKeyMsg handles keyboard input. It reports whether the key was
// consumed; unconsumed keys go to the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		return tea.Quit, true
	}

	if kind := m.state.Paywall(); kind != PaywallNone {
		return m.handlePaywallKey(msg, kind), true
	}

	if m.welcomeVisible() {
		return m.handleWelcomeKey(msg), true
	}

	if m.showHelp {
		if key.Matches(msg, m.keymap.Help, m.keymap.Escape) {
			m.showHelp = false
		}
		return nil, true
	}

	if c, ok := m.activeTabValue().(InputCapturer); ok && c.CapturingInput() {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit, true

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
		return nil, true

	case key.Matches(msg, m.keymap.Tab1):
		return m.switchTab(TabFlip), true

	case key.Matches(msg, m.keymap.Tab2):
		return m.switchTab(TabHistory), true

	case key.Matches(msg, m.keymap.Tab3):
		return m.switchTab(TabAccount), true

	case key.Matches(msg, m.keymap.NextTab):
		return m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs))), true

	case key.Matches(msg, m.keymap.PrevTab):
		return m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs))), true

	case key.Matches(msg, m.keymap.Refresh):
		if m.services != nil {
			return refreshCmd(m.services), false
		}
	}

	return nil, false
}

func (m *Model) handlePaywallKey(msg tea.KeyMsg, kind PaywallKind) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keymap.Escape):
		if kind == PaywallSoft {
			m.state.DismissPaywall()
		}

	case key.Matches(msg, m.keymap.Up):
		m.planIndex = (m.planIndex - 1 + len(purchase.Plans)) % len(purchase.Plans)

	case key.Matches(msg, m.keymap.Down):
		m.planIndex = (m.planIndex + 1) % len(purchase.Plans)

	case key.Matches(msg, m.keymap.Enter):
		return Emit(PurchaseRequestMsg{Plan: purchase.Plans[m.planIndex].ID})

	case key.Matches(msg, m.keymap.Restore):
		return Emit(RestoreRequestMsg{})
	}
	return nil
}

func (m *Model) handleWelcomeKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit
	case key.Matches(msg, m.keymap.Enter, m.keymap.Escape):
		m.welcomeDismissed = true
		return Emit(SettingsRequestMsg{Action: CompleteOnboarding})
	}
	return nil
}

func (m *Model) activeTabValue() Tab {
	if int(m.activeTab) < len(m.tabs) {
		return m.tabs[m.activeTab]
	}
	return nil
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	var reload tea.Cmd
	if m.services != nil {
		reload = loadSnapshotCmd(m.services)
	}

	switch e := event.(type) {
	case services.FlipEvent:
		return reload

	case services.EntitlementChangedEvent:
		m.state.SetEntitlement(e.Status)
		return reload

	case services.UsageChangedEvent:
		return tea.Batch(reload, Emit(HistoryChangedMsg{}))

	case services.SettingsChangedEvent:
		m.state.SetSettings(e.Settings)

	case services.ErrorEvent:
		return NotifyError(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if tab := m.activeTabValue(); tab != nil {
		b.WriteString(tab.View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	mainView := b.String()

	switch {
	case m.state.Paywall() != PaywallNone:
		blocking := m.state.Paywall() == PaywallHard
		mainView = m.overlayCentered(mainView,
			components.RenderPaywall(blocking, purchase.Plans, m.planIndex, m.state.IsPurchasing()))
	case m.welcomeVisible():
		mainView = m.overlayCentered(mainView, m.renderWelcome())
	case m.showHelp:
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	notifications := m.renderNotifications()
	if len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayHeight := len(overlayLines)
	overlayWidth := lipgloss.Width(overlay)

	y := max((m.height-overlayHeight)/2, 0)
	x := max((m.width-overlayWidth)/2, 0)

	// Grow short views so the overlay is never clipped
	for len(mainLines) < y+overlayHeight {
		mainLines = append(mainLines, "")
	}

	for i, overlayLine := range overlayLines {
		mainY := y + i
		mainLine := mainLines[mainY]

		// Keep what is left and right of the overlay
		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	var tabs []string

	for i, name := range m.tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	if m.state.Loaded() {
		badge := components.TrialBadge(m.state.Entitlement(), services.TrialEndingDays)
		gap := max(m.width-lipgloss.Width(tabBar)-lipgloss.Width(badge)-4, 1)
		tabBar = lipgloss.JoinHorizontal(lipgloss.Top, tabBar, strings.Repeat(" ", gap), badge)
	}

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderFooter() string {
	var parts []string
	if tab := m.activeTabValue(); tab != nil {
		for _, b := range tab.ShortHelp() {
			parts = append(parts, styles.HelpKeyStyle.Render(b.Help().Key)+" "+b.Help().Desc)
		}
	}
	for _, b := range m.keymap.ShortHelp() {
		parts = append(parts, styles.HelpKeyStyle.Render(b.Help().Key)+" "+b.Help().Desc)
	}
	return m.styles.Help.Render(strings.Join(parts, " • "))
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	var toasts []string
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	if len(toasts) == 0 {
		return mainView
	}

	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	toastWidth := lipgloss.Width(toastStack)
	startX := max(m.width-toastWidth-2, 0)

	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			padding := strings.Repeat(" ", startX-mainLineWidth)
			mainLines[lineIdx] = mainLine + padding + toastLine
		} else {
			truncated := ansi.Truncate(mainLine, startX, "")
			mainLines[lineIdx] = truncated + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderWelcome() string {
	lines := []string{
		m.styles.Title.Render("Welcome to Coin Flip"),
		"",
		"Ask a question, flip the coin, let fate decide.",
		"",
		fmt.Sprintf("Your free trial includes %d flips a day", usage.DailyLimit),
		fmt.Sprintf("and your last %d flips in history.", usage.FreeHistoryLimit),
		fmt.Sprintf("Pro unlocks unlimited flips and %d flips of history.", usage.ProHistoryLimit),
		"",
		m.styles.Subtle.Render("Press enter to start"),
	}
	return styles.ModalContentStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"), "")

	lines = append(lines, m.styles.Highlight.Render("Navigation"))
	for _, group := range m.keymap.FullHelp() {
		for _, binding := range group {
			lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
		}
	}
	lines = append(lines, "")

	if tab := m.activeTabValue(); tab != nil {
		lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.tabNames[m.activeTab])))
		for _, group := range tab.FullHelp() {
			for _, binding := range group {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
		}
		lines = append(lines, "")
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.tabNames[m.activeTab],
		m.styles.Subtle.Render("This tab is not yet implemented."),
	)
	return m.styles.Content.Render(content)
}
