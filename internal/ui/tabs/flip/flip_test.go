package flip

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/coinflip-tui/internal/app"
	flipsvc "github.com/j-veylop/coinflip-tui/internal/flip"
	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/services"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedState(animations bool) *app.State {
	s := app.NewState()
	s.SetSnapshot(services.Snapshot{
		Entitlement: models.EntitlementStatus{
			TrialStarted:       true,
			TrialActive:        true,
			TrialDaysRemaining: 6,
			TrialDurationDays:  7,
			CanUseApp:          true,
		},
		Usage:    models.UsageStats{DailyLimit: 5, RemainingFlips: 4, DailyFlips: 1, TotalFlips: 1},
		Settings: models.Settings{AnimationsEnabled: animations},
		Flips:    []models.FlipRecord{{ID: "a", Result: models.Heads}},
	})
	return s
}

func accepted(result models.Outcome, question string) app.FlipResultMsg {
	return app.FlipResultMsg{Result: flipsvc.Result{
		Decision: flipsvc.DecisionAccepted,
		Record:   models.FlipRecord{ID: "b", Result: result, Question: question},
	}}
}

func TestFlipKeyRequestsFlip(t *testing.T) {
	m := New(loadedState(false))

	for _, k := range []tea.KeyMsg{keyRunes("f"), {Type: tea.KeySpace}, {Type: tea.KeyEnter}} {
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Fatalf("%q should request a flip", k.String())
		}
		if _, ok := cmd().(app.FlipRequestMsg); !ok {
			t.Errorf("%q: expected FlipRequestMsg", k.String())
		}
	}
}

func TestNoFlipWhileInFlight(t *testing.T) {
	state := loadedState(false)
	state.SetLoading("flip", true)
	m := New(state)

	if _, cmd := m.Update(keyRunes("f")); cmd != nil {
		t.Error("a second flip should not be requested while one is running")
	}
}

func TestAskQuestionThenFlip(t *testing.T) {
	m := New(loadedState(false))
	m.SetSize(80, 30)

	m.Update(keyRunes("e"))
	if !m.CapturingInput() {
		t.Fatal("e should focus the question field")
	}

	// Global shortcuts are plain text while typing
	for _, r := range "q1?" {
		m.Update(keyRunes(string(r)))
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.CapturingInput() {
		t.Error("enter should leave the question field")
	}
	if cmd == nil {
		t.Fatal("enter should flip")
	}
	req, ok := cmd().(app.FlipRequestMsg)
	if !ok || req.Question != "q1?" {
		t.Fatalf("got %#v, want question q1?", req)
	}

	m.Update(accepted(models.Tails, "q1?"))
	if m.Question() != "" {
		t.Error("question should reset after an accepted flip")
	}
	view := m.View()
	for _, want := range []string{"It's Tails!", "q1?"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestEscCancelsEditing(t *testing.T) {
	m := New(loadedState(false))
	m.Update(keyRunes("e"))
	m.Update(keyRunes("a"))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if m.CapturingInput() {
		t.Error("esc should leave the question field")
	}
	if m.Question() != "" {
		t.Errorf("Question = %q, cancel should discard the edit", m.Question())
	}
}

func TestAnimatedToss(t *testing.T) {
	m := New(loadedState(true))

	_, cmd := m.Update(accepted(models.Heads, ""))
	if cmd == nil {
		t.Fatal("animated toss should start ticking")
	}
	if !m.coin.Tossing() {
		t.Fatal("coin should be spinning")
	}
	if !strings.Contains(m.View(), "Flipping...") {
		t.Error("View should show the toss in progress")
	}
	if _, cmd := m.Update(keyRunes("f")); cmd != nil {
		t.Error("no flips while the coin is in the air")
	}

	tick, ok := cmd().(spinner.TickMsg)
	if !ok {
		t.Fatal("expected spinner.TickMsg")
	}
	for m.coin.Tossing() {
		m.Update(tick)
	}
	if m.coin.Face() != models.Heads {
		t.Errorf("Face = %q, want heads", m.coin.Face())
	}
}

func TestBlockedFlipLeavesCoin(t *testing.T) {
	m := New(loadedState(false))
	m.Update(accepted(models.Heads, ""))

	m.Update(app.FlipResultMsg{
		Err:    flipsvc.ErrDailyLimitReached,
		Result: flipsvc.Result{Decision: flipsvc.DecisionSoftBlocked},
	})
	if m.coin.Face() != models.Heads {
		t.Error("a blocked flip should not change the coin")
	}
}

func TestUpgradeShowsPaywall(t *testing.T) {
	m := New(loadedState(false))
	_, cmd := m.Update(keyRunes("u"))
	if cmd == nil {
		t.Fatal("u should raise the paywall")
	}
	if _, ok := cmd().(app.ShowPaywallMsg); !ok {
		t.Error("expected ShowPaywallMsg")
	}
}

func TestView(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(80, 30)
	if !strings.Contains(m.View(), "Loading") {
		t.Error("View should wait for the first snapshot")
	}

	m = New(loadedState(false))
	m.SetSize(80, 30)
	view := m.View()
	for _, want := range []string{"Press e to ask", "1/5", "4 left", "Recent", "6 days left"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestHelp(t *testing.T) {
	m := New(app.NewState())
	if len(m.ShortHelp()) != 2 || len(m.FullHelp()) == 0 {
		t.Error("help bindings missing")
	}
}
