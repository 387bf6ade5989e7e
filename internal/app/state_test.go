package app

import (
	"testing"
	"time"

	"github.com/j-veylop/coinflip-tui/internal/flip"
	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/services"
)

func TestNewState(t *testing.T) {
	s := NewState()
	if !s.IsInitialLoading() {
		t.Error("initial load should be pending")
	}
	if s.Loaded() {
		t.Error("fresh state should not be loaded")
	}
	if s.Paywall() != PaywallNone {
		t.Error("no paywall before the first snapshot")
	}
	if s.LastFlip() != nil {
		t.Error("LastFlip should be nil")
	}
}

func TestState_SetLoading(t *testing.T) {
	s := NewState()
	s.SetLoading("initial", false)
	if s.AnyLoading() {
		t.Error("nothing should be loading")
	}

	s.SetLoading("flip", true)
	if !s.IsFlipping() || !s.AnyLoading() {
		t.Error("flip should be loading")
	}
	s.SetLoading("flip", false)

	s.SetLoading("purchase", true)
	if !s.IsPurchasing() {
		t.Error("purchase should be loading")
	}

	s.SetLoading("bogus", true)
	s.SetLoading("purchase", false)
	if s.AnyLoading() {
		t.Error("unknown resources should be ignored")
	}
}

func trialSnapshot(remaining int) services.Snapshot {
	return services.Snapshot{
		Entitlement: models.EntitlementStatus{
			TrialStarted:       true,
			TrialActive:        true,
			TrialDaysRemaining: 5,
			TrialDurationDays:  7,
			CanUseApp:          true,
		},
		Usage: models.UsageStats{DailyLimit: 5, RemainingFlips: remaining},
		Flips: []models.FlipRecord{{ID: "a", Result: models.Heads}},
	}
}

func TestState_Snapshot(t *testing.T) {
	s := NewState()
	s.SetSnapshot(trialSnapshot(3))

	if !s.Loaded() || s.IsInitialLoading() {
		t.Error("snapshot should finish the initial load")
	}
	if s.Usage().RemainingFlips != 3 {
		t.Errorf("RemainingFlips = %d, want 3", s.Usage().RemainingFlips)
	}

	snap := s.Snapshot()
	snap.Flips[0].ID = "mutated"
	if s.Snapshot().Flips[0].ID != "a" {
		t.Error("Snapshot should return a copy of the flips")
	}
	if s.TimeSinceUpdate() < 0 {
		t.Error("TimeSinceUpdate should not be negative")
	}
}

func TestState_RecordFlip(t *testing.T) {
	s := NewState()
	s.SetSnapshot(trialSnapshot(1))

	accepted := flip.Result{
		Decision:    flip.DecisionAccepted,
		Entitlement: trialSnapshot(0).Entitlement,
		Usage:       models.UsageStats{DailyLimit: 5, RemainingFlips: 0, TotalFlips: 5},
		Record:      models.FlipRecord{ID: "b", Result: models.Tails},
	}
	s.RecordFlip(accepted)

	if last := s.LastFlip(); last == nil || last.Record.ID != "b" {
		t.Fatalf("LastFlip = %+v, want b", last)
	}
	if s.Usage().TotalFlips != 5 {
		t.Errorf("TotalFlips = %d, want 5", s.Usage().TotalFlips)
	}
	if s.Paywall() != PaywallNone {
		t.Error("accepted flip should not raise the paywall")
	}

	blocked := accepted
	blocked.Decision = flip.DecisionSoftBlocked
	blocked.Record = models.FlipRecord{}
	s.RecordFlip(blocked)

	if s.Paywall() != PaywallSoft {
		t.Fatalf("Paywall = %v, want soft", s.Paywall())
	}
	if s.LastFlip().Record.ID != "b" {
		t.Error("blocked flip should keep the last accepted flip")
	}

	s.ClearLastFlip()
	if s.LastFlip() != nil {
		t.Error("ClearLastFlip should forget the flip")
	}
}

func TestState_Paywall(t *testing.T) {
	s := NewState()
	s.SetSnapshot(trialSnapshot(0))

	s.ShowSoftPaywall()
	if s.Paywall() != PaywallSoft {
		t.Fatalf("Paywall = %v, want soft", s.Paywall())
	}
	if !s.DismissPaywall() {
		t.Error("soft paywall should be dismissible")
	}
	if s.Paywall() != PaywallNone {
		t.Error("paywall should be closed")
	}

	// A new day with flips left clears a stale soft paywall
	s.ShowSoftPaywall()
	s.SetSnapshot(trialSnapshot(5))
	if s.Paywall() != PaywallNone {
		t.Error("soft paywall should clear when flips are available")
	}

	expired := trialSnapshot(5)
	expired.Entitlement = models.EntitlementStatus{TrialStarted: true, TrialExpired: true}
	s.SetSnapshot(expired)
	if s.Paywall() != PaywallHard {
		t.Fatalf("Paywall = %v, want hard", s.Paywall())
	}
	if s.DismissPaywall() {
		t.Error("hard paywall must not be dismissible")
	}

	s.SetEntitlement(models.EntitlementStatus{IsPro: true, CanUseApp: true})
	if s.Paywall() != PaywallNone {
		t.Error("Pro should lift every paywall")
	}
}

func TestPaywallKind_String(t *testing.T) {
	for kind, want := range map[PaywallKind]string{
		PaywallNone: "none",
		PaywallSoft: "soft",
		PaywallHard: "hard",
	} {
		if got := kind.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestState_Settings(t *testing.T) {
	s := NewState()
	want := models.Settings{SoundEnabled: true, HasCompletedOnboarding: true}
	s.SetSettings(want)
	if s.Settings() != want {
		t.Errorf("Settings = %+v, want %+v", s.Settings(), want)
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "test", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("GetNotifications len = %d, want 1", len(notifs))
	}
	if notifs[0].Message != "test" {
		t.Errorf("Notification message = %s, want test", notifs[0].Message)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("Notification should be removed")
	}
}

func TestState_ClearExpiredNotifications(t *testing.T) {
	s := NewState()

	// Expired
	s.notifications = append(s.notifications, Notification{
		ID:        "expired",
		CreatedAt: time.Now().Add(-2 * time.Minute),
		Duration:  time.Minute,
	})

	// Active
	s.notifications = append(s.notifications, Notification{
		ID:        "active",
		CreatedAt: time.Now(),
		Duration:  time.Minute,
	})

	s.ClearExpiredNotifications()

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != "active" {
		t.Errorf("Expected active notification, got %s", notifs[0].ID)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("loading...")
	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != LoadingNotificationID {
		t.Errorf("Expected ID %s, got %s", LoadingNotificationID, notifs[0].ID)
	}
	if notifs[0].Message != "loading..." {
		t.Errorf("Expected message loading..., got %s", notifs[0].Message)
	}

	// Update message
	s.SetLoadingNotification("still loading...")
	notifs = s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification after update")
	}
	if notifs[0].Message != "still loading..." {
		t.Errorf("Expected message still loading..., got %s", notifs[0].Message)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("Loading notification should be cleared")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		t    NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationLoading, "loading"},
		{NotificationType(999), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
