package app

import (
	"time"

	"github.com/j-veylop/coinflip-tui/internal/flip"
	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/purchase"
	"github.com/j-veylop/coinflip-tui/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// SnapshotLoadedMsg carries a fresh read of every service.
type SnapshotLoadedMsg struct {
	Snapshot services.Snapshot
}

// FlipRequestMsg asks for one flip.
type FlipRequestMsg struct {
	Question string
}

// FlipResultMsg is the decided flip request. Err is the sentinel for blocked
// requests.
type FlipResultMsg struct {
	Err    error
	Result flip.Result
}

// PurchaseRequestMsg asks the store to buy a plan.
type PurchaseRequestMsg struct {
	Plan purchase.PlanID
}

// PurchaseResultMsg contains the result of a purchase.
type PurchaseResultMsg struct {
	Error error
	Plan  purchase.PlanID
}

// RestoreRequestMsg asks the store to restore a previous purchase.
type RestoreRequestMsg struct{}

// RestoreResultMsg contains the result of a restore.
type RestoreResultMsg struct {
	Error error
}

// ClearHistoryRequestMsg asks to erase the flip log and counters.
type ClearHistoryRequestMsg struct{}

// ClearHistoryResultMsg contains the result of clearing history.
type ClearHistoryResultMsg struct {
	Error error
}

// DevResetRequestMsg asks for the developer trial reset.
type DevResetRequestMsg struct{}

// DevResetResultMsg contains the result of the developer reset.
type DevResetResultMsg struct {
	Error error
}

// SettingsAction names a preference change.
type SettingsAction int

const (
	// ToggleSound flips the sound preference.
	ToggleSound SettingsAction = iota
	// ToggleAnimations flips the animation preference.
	ToggleAnimations
	// CompleteOnboarding dismisses the welcome screen for good.
	CompleteOnboarding
)

// SettingsRequestMsg asks for a preference change.
type SettingsRequestMsg struct {
	Action SettingsAction
}

// SettingsResultMsg contains the preferences after a change.
type SettingsResultMsg struct {
	Error    error
	Settings models.Settings
	Action   SettingsAction
}

// ShowPaywallMsg raises the soft paywall from a tab.
type ShowPaywallMsg struct{}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// HistoryChangedMsg tells tabs that the flip log changed and derived views
// should reload.
type HistoryChangedMsg struct{}
