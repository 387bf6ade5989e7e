// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/j-veylop/coinflip-tui/internal/flip"
	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/services"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

// LoadingNotificationID is the fixed ID for loading notifications.
const LoadingNotificationID = "__loading__"

// maxNotifications bounds the toast stack.
const maxNotifications = 10

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// PaywallKind is which upgrade prompt is showing.
type PaywallKind int

const (
	// PaywallNone means no prompt.
	PaywallNone PaywallKind = iota
	// PaywallSoft is the dismissible prompt shown at the daily cap.
	PaywallSoft
	// PaywallHard is the blocking prompt shown once the trial has ended.
	PaywallHard
)

// String returns the string representation of a PaywallKind.
func (p PaywallKind) String() string {
	switch p {
	case PaywallSoft:
		return "soft"
	case PaywallHard:
		return "hard"
	default:
		return "none"
	}
}

// LoadingState tracks in-flight work.
type LoadingState struct {
	Initial  bool
	Flip     bool
	Purchase bool
}

// State is the view-side copy of the service snapshot, shared by every tab.
type State struct {
	mu sync.RWMutex

	snapshot    services.Snapshot
	lastFlip    *flip.Result
	softPaywall bool
	loaded      bool

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState returns an empty state waiting for the first snapshot.
func NewState() *State {
	return &State{
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "flip":
		s.Loading.Flip = loading
	case "purchase":
		s.Loading.Purchase = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial || s.Loading.Flip || s.Loading.Purchase
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// IsFlipping reports whether a flip request is in flight.
func (s *State) IsFlipping() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Flip
}

// IsPurchasing reports whether a store call is in flight.
func (s *State) IsPurchasing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Purchase
}

// SetSnapshot replaces everything read from the services.
func (s *State) SetSnapshot(snap services.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snap
	s.loaded = true
	s.LastUpdated = time.Now()
	s.Loading.Initial = false

	if snap.Entitlement.IsPro || (!snap.Usage.Unlimited() && snap.Usage.RemainingFlips > 0) {
		s.softPaywall = false
	}
}

// Snapshot returns the latest snapshot.
func (s *State) Snapshot() services.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Flips = append([]models.FlipRecord(nil), s.snapshot.Flips...)
	return snap
}

// Loaded reports whether a snapshot has been received.
func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Entitlement returns the latest entitlement status.
func (s *State) Entitlement() models.EntitlementStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Entitlement
}

// SetEntitlement updates the entitlement part of the snapshot.
func (s *State) SetEntitlement(status models.EntitlementStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Entitlement = status
	if status.IsPro {
		s.softPaywall = false
	}
}

// Usage returns the latest usage stats.
func (s *State) Usage() models.UsageStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Usage
}

// Settings returns the latest preferences.
func (s *State) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Settings
}

// SetSettings updates the preferences part of the snapshot.
func (s *State) SetSettings(settings models.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Settings = settings
}

// RecordFlip stores the outcome of a flip request and raises the soft
// paywall when it was soft-blocked.
func (s *State) RecordFlip(r flip.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Entitlement = r.Entitlement
	s.snapshot.Usage = r.Usage
	if r.Accepted() {
		res := r
		s.lastFlip = &res
	}
	if r.Decision == flip.DecisionSoftBlocked {
		s.softPaywall = true
	}
}

// LastFlip returns the most recent accepted flip, or nil.
func (s *State) LastFlip() *flip.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastFlip == nil {
		return nil
	}
	r := *s.lastFlip
	return &r
}

// ClearLastFlip forgets the most recent flip.
func (s *State) ClearLastFlip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFlip = nil
}

// Paywall returns which upgrade prompt should show. The hard paywall wins
// whenever the app is unusable, and cannot be dismissed.
func (s *State) Paywall() PaywallKind {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case !s.loaded:
		return PaywallNone
	case !s.snapshot.Entitlement.CanUseApp:
		return PaywallHard
	case s.softPaywall:
		return PaywallSoft
	default:
		return PaywallNone
	}
}

// ShowSoftPaywall raises the dismissible upgrade prompt.
func (s *State) ShowSoftPaywall() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.softPaywall = true
}

// DismissPaywall closes the soft paywall. The hard paywall stays.
func (s *State) DismissPaywall() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.snapshot.Entitlement.CanUseApp {
		return false
	}
	s.softPaywall = false
	return true
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := fmt.Sprintf("%s-%d", time.Now().Format("20060102150405"), s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
