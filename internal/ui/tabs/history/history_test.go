package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/coinflip-tui/internal/app"
	"github.com/j-veylop/coinflip-tui/internal/clock"
	"github.com/j-veylop/coinflip-tui/internal/config"
	"github.com/j-veylop/coinflip-tui/internal/flip"
	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/services"
)

type silentNotifier struct{}

func (silentNotifier) Notify(string, string) error { return nil }
func (silentNotifier) Beep() error                 { return nil }

func newTestManager(t *testing.T) *services.Manager {
	t.Helper()
	tmpDir := t.TempDir()
	cfg := &config.Config{
		Location:     time.UTC,
		DatabasePath: filepath.Join(tmpDir, "test.db"),
		SettingsPath: filepath.Join(tmpDir, "settings.json"),
		SaveTimeout:  time.Second,
	}
	mgr, err := services.NewManager(cfg,
		services.WithClock(clock.NewManual(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))),
		services.WithNotifier(silentNotifier{}),
		services.WithSource(flip.SourceFunc(func() models.Outcome { return models.Heads })),
	)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.timeRange != models.TimeRange7Days {
		t.Errorf("timeRange = %v, want 7 days", m.timeRange)
	}
}

func TestModel_InitWithoutServices(t *testing.T) {
	m := New(app.NewState(), nil)
	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init returned nil")
	}
	msg, ok := cmd().(historyErrorMsg)
	if !ok {
		t.Fatalf("expected historyErrorMsg, got %T", msg)
	}

	m.Update(msg)
	if !strings.Contains(m.View(), "Services not initialized") {
		t.Error("View should show the load error")
	}
}

func TestModel_EmptyView(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(80, 30)
	if view := m.View(); !strings.Contains(view, "No flips yet") {
		t.Errorf("expected empty view, got %q", view)
	}
}

func TestModel_WithData(t *testing.T) {
	mgr := newTestManager(t)
	for _, q := range []string{"tea?", "coffee?", "nap?"} {
		if _, err := mgr.Flip(context.Background(), q); err != nil {
			t.Fatalf("Flip failed: %v", err)
		}
	}

	state := app.NewState()
	state.SetSnapshot(mgr.Snapshot())

	m := New(state, mgr)
	m.SetSize(100, 80)

	msg, ok := m.Init()().(historyLoadedMsg)
	if !ok {
		t.Fatal("expected historyLoadedMsg")
	}
	if msg.stats.TotalFlips != 3 {
		t.Errorf("TotalFlips = %d, want 3", msg.stats.TotalFlips)
	}
	m.Update(msg)

	view := m.View()
	for _, want := range []string{"Recent Flips (3)", "coffee?", "Longest streak: 3", "Daily Flips"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestModel_ToggleRange(t *testing.T) {
	m := New(app.NewState(), nil)

	_, cmd := m.Update(keyRunes("t"))
	if cmd == nil {
		t.Error("toggling the range should reload")
	}
	if m.timeRange != models.TimeRange30Days {
		t.Errorf("timeRange = %v, want 30 days", m.timeRange)
	}
	if !m.loading {
		t.Error("should be loading after toggle")
	}
}

func TestModel_ClearNeedsConfirmation(t *testing.T) {
	state := app.NewState()
	state.SetSnapshot(services.Snapshot{
		Flips: []models.FlipRecord{{ID: "a", Result: models.Tails}},
		Usage: models.UsageStats{TotalFlips: 1},
	})
	m := New(state, nil)

	if _, cmd := m.Update(keyRunes("c")); cmd != nil {
		t.Fatal("first c should only ask for confirmation")
	}
	if !m.confirmClear {
		t.Fatal("should be confirming")
	}

	// Any other key cancels
	m.Update(keyRunes("x"))
	if m.confirmClear {
		t.Fatal("other keys should cancel")
	}

	m.Update(keyRunes("c"))
	_, cmd := m.Update(keyRunes("c"))
	if cmd == nil {
		t.Fatal("second c should request clearing")
	}
	if _, ok := cmd().(app.ClearHistoryRequestMsg); !ok {
		t.Error("expected ClearHistoryRequestMsg")
	}
}

func TestModel_ReloadsWhenTotalsMove(t *testing.T) {
	m := New(app.NewState(), nil)

	snap := services.Snapshot{Usage: models.UsageStats{TotalFlips: 1}}
	if _, cmd := m.Update(app.SnapshotLoadedMsg{Snapshot: snap}); cmd != nil {
		t.Error("first snapshot should only record the total")
	}

	snap.Usage.TotalFlips = 2
	if _, cmd := m.Update(app.SnapshotLoadedMsg{Snapshot: snap}); cmd == nil {
		t.Error("a new flip should reload the chart")
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(), nil)
	if len(m.ShortHelp()) != 3 {
		t.Errorf("ShortHelp = %d bindings, want 3", len(m.ShortHelp()))
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate = %q, want abcd…", got)
	}
}
