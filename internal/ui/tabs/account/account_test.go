package account

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/coinflip-tui/internal/app"
	"github.com/j-veylop/coinflip-tui/internal/config"
	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/purchase"
	"github.com/j-veylop/coinflip-tui/internal/services"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func trialState(devTools bool) *app.State {
	s := app.NewState()
	s.SetSnapshot(services.Snapshot{
		Entitlement: models.EntitlementStatus{
			TrialStarted:       true,
			TrialActive:        true,
			TrialDaysRemaining: 3,
			TrialDurationDays:  7,
			CanUseApp:          true,
		},
		Usage:    models.UsageStats{DailyLimit: 5, DailyFlips: 2, RemainingFlips: 3, TotalFlips: 12},
		Settings: models.DefaultSettings(),
		DevTools: devTools,
	})
	return s
}

func emitted(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

func TestPlanSelectionAndPurchase(t *testing.T) {
	m := New(trialState(false), nil)

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.planIndex != len(purchase.Plans)-1 {
		t.Errorf("planIndex = %d, up should wrap to the last plan", m.planIndex)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	req, ok := emitted(t, cmd).(app.PurchaseRequestMsg)
	if !ok {
		t.Fatal("expected PurchaseRequestMsg")
	}
	if req.Plan != purchase.Plans[1].ID {
		t.Errorf("Plan = %s, want %s", req.Plan, purchase.Plans[1].ID)
	}
}

func TestNoPurchaseWhileBusy(t *testing.T) {
	state := trialState(false)
	state.SetLoading("purchase", true)
	m := New(state, nil)

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter should do nothing while a purchase is running")
	}
}

func TestActions(t *testing.T) {
	m := New(trialState(false), nil)

	tests := []struct {
		key  string
		want tea.Msg
	}{
		{"R", app.RestoreRequestMsg{}},
		{"s", app.SettingsRequestMsg{Action: app.ToggleSound}},
		{"a", app.SettingsRequestMsg{Action: app.ToggleAnimations}},
	}
	for _, tt := range tests {
		_, cmd := m.Update(keyRunes(tt.key))
		if got := emitted(t, cmd); got != tt.want {
			t.Errorf("%s: got %#v, want %#v", tt.key, got, tt.want)
		}
	}
}

func TestDevResetNeedsDevTools(t *testing.T) {
	m := New(trialState(false), nil)
	m.SetSize(100, 80)
	if _, cmd := m.Update(keyRunes("D")); cmd != nil {
		t.Error("D should be ignored without dev tools")
	}
	if strings.Contains(m.View(), "Developer") {
		t.Error("dev card should be hidden")
	}

	m = New(trialState(true), nil)
	m.SetSize(100, 80)
	if !strings.Contains(m.View(), "Developer") {
		t.Error("dev card should show with dev tools")
	}
	_, cmd := m.Update(keyRunes("D"))
	if _, ok := emitted(t, cmd).(app.DevResetRequestMsg); !ok {
		t.Error("expected DevResetRequestMsg")
	}
}

func TestView(t *testing.T) {
	cfg := &config.Config{DatabasePath: "/tmp/coinflip.db", SettingsPath: "/tmp/settings.json"}
	m := New(trialState(false), cfg)
	m.SetSize(100, 80)

	view := m.View()
	for _, want := range []string{"Free trial", "3 days left", "2/5", "Go Pro", "Yearly", "Sound", "/tmp/coinflip.db"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestView_TrialStart(t *testing.T) {
	state := trialState(false)
	m := New(state, nil)
	m.SetSize(100, 80)
	if strings.Contains(m.View(), "Trial started") {
		t.Error("no start date should render without a timestamp")
	}

	start := time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)
	ent := state.Entitlement()
	ent.TrialStart = &start
	state.SetEntitlement(ent)
	if !strings.Contains(m.View(), "Mar 4, 2026") {
		t.Error("View should show the trial start date")
	}
}

func TestView_Pro(t *testing.T) {
	state := trialState(false)
	state.SetEntitlement(models.EntitlementStatus{IsPro: true, CanUseApp: true})
	m := New(state, nil)
	m.SetSize(100, 80)

	view := m.View()
	if strings.Contains(view, "Go Pro") {
		t.Error("plans should be hidden for Pro users")
	}
	if !strings.Contains(view, "Pro") {
		t.Error("View should show the Pro plan")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("Pro users cannot buy again")
	}
}

func TestHelp(t *testing.T) {
	m := New(trialState(true), nil)
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) != 3 {
		t.Errorf("FullHelp = %d groups, want 3 with dev tools", len(m.FullHelp()))
	}
}
