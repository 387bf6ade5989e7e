package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/coinflip-tui/internal/purchase"
	"github.com/j-veylop/coinflip-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 5 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// storeTimeout bounds purchase and restore calls.
	storeTimeout = 30 * time.Second

	// opTimeout bounds local storage operations.
	opTimeout = 5 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadSnapshotCmd reads every service without side effects.
func loadSnapshotCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return SnapshotLoadedMsg{Snapshot: mgr.Snapshot()}
	}
}

// refreshCmd applies the day rollover and re-reads the trial before loading
// the snapshot.
func refreshCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.Refresh()
		return SnapshotLoadedMsg{Snapshot: mgr.Snapshot()}
	}
}

// flipCmd runs one flip request through the gate.
func flipCmd(mgr *services.Manager, question string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		res, err := mgr.Flip(ctx, question)
		return FlipResultMsg{Result: res, Err: err}
	}
}

// purchaseCmd buys plan through the store.
func purchaseCmd(mgr *services.Manager, plan purchase.PlanID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		return PurchaseResultMsg{Plan: plan, Error: mgr.Purchase(ctx, plan)}
	}
}

// restoreCmd restores a previous purchase.
func restoreCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		return RestoreResultMsg{Error: mgr.Restore(ctx)}
	}
}

// clearHistoryCmd erases the flip log and counters.
func clearHistoryCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		return ClearHistoryResultMsg{Error: mgr.ClearHistory(ctx)}
	}
}

// devResetCmd runs the developer trial reset.
func devResetCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		return DevResetResultMsg{Error: mgr.DevReset(ctx)}
	}
}

// settingsCmd applies a preference change.
func settingsCmd(mgr *services.Manager, action SettingsAction) tea.Cmd {
	return func() tea.Msg {
		var msg SettingsResultMsg
		msg.Action = action

		switch action {
		case ToggleSound:
			msg.Settings, msg.Error = mgr.ToggleSound()
		case ToggleAnimations:
			msg.Settings, msg.Error = mgr.ToggleAnimations()
		case CompleteOnboarding:
			msg.Settings, msg.Error = mgr.CompleteOnboarding()
		}
		return msg
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// NotifySuccess returns a command that adds a success notification.
func NotifySuccess(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// NotifyError returns a command that adds an error notification.
func NotifyError(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// NotifyWarning returns a command that adds a warning notification.
func NotifyWarning(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

// NotifyInfo returns a command that adds an info notification.
func NotifyInfo(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Emit wraps msg in a command, for tabs asking the model to act.
func Emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
