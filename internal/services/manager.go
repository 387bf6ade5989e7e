// Package services provides service orchestration for the TUI and the CLI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/j-veylop/coinflip-tui/internal/clock"
	"github.com/j-veylop/coinflip-tui/internal/config"
	"github.com/j-veylop/coinflip-tui/internal/db"
	"github.com/j-veylop/coinflip-tui/internal/entitlement"
	"github.com/j-veylop/coinflip-tui/internal/flip"
	"github.com/j-veylop/coinflip-tui/internal/logger"
	"github.com/j-veylop/coinflip-tui/internal/metrics"
	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/purchase"
	"github.com/j-veylop/coinflip-tui/internal/services/settings"
	"github.com/j-veylop/coinflip-tui/internal/store"
	"github.com/j-veylop/coinflip-tui/internal/usage"
)

// ErrDevToolsDisabled is returned by developer hooks unless DEV_TOOLS is set.
var ErrDevToolsDisabled = errors.New("developer tools are disabled (set DEV_TOOLS=true)")

// TrialEndingDays is the remaining-days threshold for the "trial ending" warning.
const TrialEndingDays = 2

type (
	// FlipEvent is emitted after every flip request, accepted or blocked.
	FlipEvent struct {
		Result flip.Result
	}

	// EntitlementChangedEvent is emitted when trial or Pro status changes.
	EntitlementChangedEvent struct {
		Status models.EntitlementStatus
	}

	// UsageChangedEvent is emitted when the ledger changes outside a flip.
	UsageChangedEvent struct {
		Stats models.UsageStats
	}

	// SettingsChangedEvent is emitted when preferences change.
	SettingsChangedEvent struct {
		Settings models.Settings
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (FlipEvent) isServiceEvent()               {}
func (EntitlementChangedEvent) isServiceEvent() {}
func (UsageChangedEvent) isServiceEvent()       {}
func (SettingsChangedEvent) isServiceEvent()    {}
func (ErrorEvent) isServiceEvent()              {}

// Snapshot is everything the presentation layer shows, read together.
type Snapshot struct {
	Entitlement models.EntitlementStatus
	Settings    models.Settings
	Flips       []models.FlipRecord
	Usage       models.UsageStats
	DevTools    bool
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithNotifier replaces the desktop notifier.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithSource replaces the coin.
func WithSource(s flip.Source) Option {
	return func(m *Manager) { m.source = s }
}

// Manager owns every stateful component and routes their events.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	clock       clock.Clock
	source      flip.Source
	notifier    Notifier
	database    *db.DB
	saver       *store.WriteBehind
	entitlement *entitlement.Engine
	usage       *usage.Tracker
	flips       *flip.Orchestrator
	purchases   *purchase.Service
	provider    *purchase.DevProvider
	settings    *settings.Service
	metrics     *metrics.Metrics
	stopChan    chan struct{}
	stopMetrics context.CancelFunc
	subscribers []chan<- ServiceEvent
	lastStatus  *models.EntitlementStatus
	closeOnce   sync.Once
}

// NewManager opens storage, restores state and starts the trial on first launch.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		cfg:      cfg,
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.clock == nil {
		m.clock = clock.NewSystem(cfg.Location)
	}
	if m.notifier == nil {
		m.notifier = newNotifier(cfg.Notifications)
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.settings, err = settings.New(cfg.SettingsPath)
	if err != nil {
		_ = m.database.Close()
		return nil, fmt.Errorf("failed to initialize settings: %w", err)
	}

	ctx := context.Background()
	m.saver = store.NewWriteBehind(m.database, cfg.SaveTimeout)
	m.metrics = metrics.New()

	m.entitlement = entitlement.Load(ctx, m.database, m.saver, m.clock)
	m.usage = usage.Load(ctx, m.database, m.saver, m.clock)

	m.provider = purchase.NewDevProvider(m.database, m.clock)
	m.purchases = purchase.NewService(m.provider, m.entitlement, m.metrics)

	m.flips = flip.New(m.entitlement, m.usage, m.source,
		m.metrics,
		flip.ObserverFunc(m.recordFlipEvent),
		flip.ObserverFunc(m.onFlip),
	)

	m.entitlement.OnChange(m.onEntitlementChange)

	if m.entitlement.InitializeTrial() {
		logger.Info("first launch, trial started")
	}
	if _, err := m.purchases.Sync(ctx); err != nil {
		logger.Warn("entitlement check failed", "error", err)
	}
	m.Refresh()

	if cfg.MetricsAddr != "" {
		mctx, cancel := context.WithCancel(context.Background())
		m.stopMetrics = cancel
		m.metrics.Serve(mctx, cfg.MetricsAddr)
	}

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from the settings watcher to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.settings.Events():
			m.handleSettingsEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleSettingsEvent(event settings.Event) {
	switch event.Type {
	case settings.EventSettingsLoaded, settings.EventSettingsChanged:
		m.broadcast(SettingsChangedEvent{Settings: event.Settings})
	case settings.EventError:
		m.broadcast(ErrorEvent{Service: "settings", Error: event.Error})
	}
}

// Flip runs one flip request through the gate.
func (m *Manager) Flip(ctx context.Context, question string) (flip.Result, error) {
	return m.flips.Flip(ctx, question)
}

// recordFlipEvent appends accepted flips to the chart log.
func (m *Manager) recordFlipEvent(ctx context.Context, r flip.Result) {
	if !r.Accepted() {
		return
	}
	if err := m.database.InsertFlipEvent(ctx, r.Record, m.clock.Location()); err != nil {
		logger.Warn("failed to record flip event", "error", err)
	}
}

func (m *Manager) onFlip(_ context.Context, r flip.Result) {
	m.broadcast(FlipEvent{Result: r})

	if !r.Accepted() {
		return
	}
	if m.settings.Get().SoundEnabled {
		if err := m.notifier.Beep(); err != nil {
			logger.Debug("beep failed", "error", err)
		}
	}
	if !r.Entitlement.IsPro && r.Usage.RemainingFlips == 0 {
		m.notify("Daily limit reached",
			fmt.Sprintf("You've used all %d free flips today. Go Pro for unlimited flips.", usage.DailyLimit))
	}
}

func (m *Manager) onEntitlementChange(status models.EntitlementStatus) {
	m.metrics.SetEntitlement(status.IsPro, status.TrialDaysRemaining)
	m.broadcast(EntitlementChangedEvent{Status: status})
	m.checkNotifications(status)
}

// checkNotifications fires desktop notifications when status crosses a
// threshold since the previous observation. The first observation only
// records the baseline.
func (m *Manager) checkNotifications(status models.EntitlementStatus) {
	m.mu.Lock()
	prev := m.lastStatus
	m.lastStatus = &status
	m.mu.Unlock()

	if prev == nil {
		return
	}

	switch {
	case status.IsPro && !prev.IsPro:
		m.notify("Pro unlocked", "Unlimited flips and full history are yours.")
	case status.TrialExpired && !prev.TrialExpired:
		m.notify("Trial ended", "Your free trial has ended. Upgrade to keep flipping.")
	case status.TrialActive && status.TrialStarted &&
		status.TrialDaysRemaining <= TrialEndingDays && prev.TrialDaysRemaining > TrialEndingDays:
		m.notify("Trial ending soon", fmt.Sprintf("%d days left in your free trial.", status.TrialDaysRemaining))
	}
}

func (m *Manager) notify(title, body string) {
	if err := m.notifier.Notify(title, body); err != nil {
		logger.Debug("notification failed", "title", title, "error", err)
	}
}

// Refresh applies the lazy day rollover and re-evaluates the entitlement
// status. Called on startup and from the UI tick; there is no scheduler.
func (m *Manager) Refresh() models.EntitlementStatus {
	m.usage.ResetDailyFlipsIfNewDay()
	status := m.entitlement.Status()
	m.metrics.SetEntitlement(status.IsPro, status.TrialDaysRemaining)
	m.checkNotifications(status)
	return status
}

// Snapshot returns the current state for display.
func (m *Manager) Snapshot() Snapshot {
	status := m.entitlement.Status()
	return Snapshot{
		Entitlement: status,
		Usage:       m.usage.Stats(status.IsPro),
		Flips:       m.usage.VisibleFlips(status.IsPro),
		Settings:    m.settings.Get(),
		DevTools:    m.cfg.DevTools,
	}
}

// History aggregates the flip event log over timeRange.
func (m *Manager) History(ctx context.Context, timeRange models.TimeRange) (*models.FlipHistoryStats, error) {
	return m.database.GetFlipHistoryStats(ctx, timeRange, m.clock.Now(), m.clock.Location())
}

// Purchase buys plan through the store.
func (m *Manager) Purchase(ctx context.Context, plan purchase.PlanID) error {
	return m.purchases.Purchase(ctx, plan)
}

// Restore re-applies a previous purchase.
func (m *Manager) Restore(ctx context.Context) error {
	return m.purchases.Restore(ctx)
}

// ClearHistory empties the flip log, every counter and the chart log, then
// compacts the database file.
func (m *Manager) ClearHistory(ctx context.Context) error {
	m.usage.ClearHistory()
	defer m.broadcastUsage()

	n, err := m.database.CountFlipEvents(ctx)
	if err != nil {
		return err
	}
	if err := m.database.DeleteFlipEvents(ctx); err != nil {
		return fmt.Errorf("failed to clear flip events: %w", err)
	}
	if n > 0 {
		if err := m.database.Vacuum(ctx); err != nil {
			logger.Warn("failed to compact database", "error", err)
		}
	}
	return nil
}

// DevReset restarts the trial from now, clears Pro and today's flips, and
// forgets the simulated purchase receipt.
func (m *Manager) DevReset(ctx context.Context) error {
	if !m.cfg.DevTools {
		return ErrDevToolsDisabled
	}

	if err := m.database.DeleteState(ctx, store.KeyPurchases); err != nil {
		return err
	}
	m.entitlement.Reset()
	m.entitlement.InitializeTrial()
	m.usage.ResetDailyFlips()

	logger.Info("developer reset applied")
	m.broadcastUsage()
	return nil
}

func (m *Manager) broadcastUsage() {
	m.broadcast(UsageChangedEvent{Stats: m.usage.Stats(m.entitlement.IsPro())})
}

// ToggleSound flips the sound preference.
func (m *Manager) ToggleSound() (models.Settings, error) {
	return m.settings.ToggleSound()
}

// ToggleAnimations flips the animation preference.
func (m *Manager) ToggleAnimations() (models.Settings, error) {
	return m.settings.ToggleAnimations()
}

// CompleteOnboarding records that the welcome screen was dismissed.
func (m *Manager) CompleteOnboarding() (models.Settings, error) {
	return m.settings.CompleteOnboarding()
}

// Flush waits for pending state writes.
func (m *Manager) Flush(ctx context.Context) error {
	return m.saver.Flush(ctx)
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events. The channel is
// closed by Close.
func (m *Manager) Subscribe() chan ServiceEvent {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close drains pending saves and closes every service.
func (m *Manager) Close() error {
	var errs []error

	m.closeOnce.Do(func() {
		close(m.stopChan)

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if m.stopMetrics != nil {
			m.stopMetrics()
		}

		if err := m.saver.Close(); err != nil {
			errs = append(errs, err)
		}

		if err := m.settings.Close(); err != nil {
			errs = append(errs, err)
		}

		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	})

	return errors.Join(errs...)
}
