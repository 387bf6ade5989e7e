package db

import (
	"context"
	"testing"
	"time"

	"github.com/j-veylop/coinflip-tui/internal/models"
)

func TestState_LoadSave(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	_, found, err := db.Load(ctx, "quota")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if found {
		t.Error("Expected missing key to report found=false")
	}

	if err := db.Save(ctx, "quota", []byte(`{"dailyFlipCount":1}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := db.Save(ctx, "quota", []byte(`{"dailyFlipCount":2}`)); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	data, found, err := db.Load(ctx, "quota")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !found {
		t.Fatal("Expected key to be found")
	}
	if string(data) != `{"dailyFlipCount":2}` {
		t.Errorf("Expected upserted value, got %s", data)
	}

	if err := db.DeleteState(ctx, "quota"); err != nil {
		t.Fatalf("DeleteState failed: %v", err)
	}
	if _, found, _ := db.Load(ctx, "quota"); found {
		t.Error("Expected key to be deleted")
	}
}

func TestState_PersistsAcrossReopen(t *testing.T) {
	path := t.TempDir() + "/state.db"
	ctx := context.Background()

	db, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := db.Save(ctx, "entitlement", []byte(`{"proStatus":true}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err = New(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer db.Close()

	data, found, err := db.Load(ctx, "entitlement")
	if err != nil || !found {
		t.Fatalf("Load after reopen: found=%v err=%v", found, err)
	}
	if string(data) != `{"proStatus":true}` {
		t.Errorf("Unexpected value %s", data)
	}
}

func insertFlips(t *testing.T, db *DB, start time.Time, results ...models.Outcome) {
	t.Helper()
	for i, r := range results {
		rec := models.FlipRecord{
			ID:        start.Add(time.Duration(i) * time.Minute).Format(time.RFC3339Nano),
			Result:    r,
			Timestamp: start.Add(time.Duration(i) * time.Minute),
		}
		if err := db.InsertFlipEvent(context.Background(), rec, time.UTC); err != nil {
			t.Fatalf("InsertFlipEvent failed: %v", err)
		}
	}
}

func TestGetFlipHistoryStats(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	H, T := models.Heads, models.Tails

	// 20 days ago: outside the 7-day range.
	insertFlips(t, db, now.AddDate(0, 0, -20), H, H, H, H)
	// 2 days ago and today.
	insertFlips(t, db, now.AddDate(0, 0, -2), T, T, H)
	insertFlips(t, db, now.Add(-time.Hour), T, H)

	stats, err := db.GetFlipHistoryStats(ctx, models.TimeRange7Days, now, time.UTC)
	if err != nil {
		t.Fatalf("GetFlipHistoryStats failed: %v", err)
	}
	if stats.TotalFlips != 5 {
		t.Errorf("Expected 5 flips in 7 days, got %d", stats.TotalFlips)
	}
	if stats.Heads != 2 || stats.Tails != 3 {
		t.Errorf("Expected 2 heads / 3 tails, got %d / %d", stats.Heads, stats.Tails)
	}
	if len(stats.Daily) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(stats.Daily))
	}
	if stats.Daily[0].Date.Format("2006-01-02") != "2026-10-17" {
		t.Errorf("Expected oldest day first, got %v", stats.Daily[0].Date)
	}
	if stats.LongestStreak != 2 || stats.StreakOutcome != T {
		t.Errorf("Expected tails streak of 2, got %d %s", stats.LongestStreak, stats.StreakOutcome)
	}

	all, err := db.GetFlipHistoryStats(ctx, models.TimeRangeAllTime, now, time.UTC)
	if err != nil {
		t.Fatalf("GetFlipHistoryStats all-time failed: %v", err)
	}
	if all.TotalFlips != 9 {
		t.Errorf("Expected 9 flips all time, got %d", all.TotalFlips)
	}
	if all.LongestStreak != 4 || all.StreakOutcome != H {
		t.Errorf("Expected heads streak of 4, got %d %s", all.LongestStreak, all.StreakOutcome)
	}
	if !all.FirstFlip.Equal(now.AddDate(0, 0, -20)) {
		t.Errorf("Unexpected first flip %v", all.FirstFlip)
	}
}

func TestGetFlipHistoryStats_Empty(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	stats, err := db.GetFlipHistoryStats(context.Background(), models.TimeRange30Days, time.Now(), nil)
	if err != nil {
		t.Fatalf("GetFlipHistoryStats failed: %v", err)
	}
	if stats.HasData() {
		t.Error("Expected no data")
	}
}

func TestDeleteFlipEvents(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	insertFlips(t, db, time.Now().Add(-time.Hour), models.Heads, models.Tails)

	n, err := db.CountFlipEvents(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Expected 2 events, got %d (%v)", n, err)
	}
	if err := db.DeleteFlipEvents(ctx); err != nil {
		t.Fatalf("DeleteFlipEvents failed: %v", err)
	}
	n, _ = db.CountFlipEvents(ctx)
	if n != 0 {
		t.Errorf("Expected 0 events after delete, got %d", n)
	}
}

func TestInsertFlipEvent_RejectsInvalidResult(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	rec := models.FlipRecord{ID: "x", Result: "edge", Timestamp: time.Now()}
	if err := db.InsertFlipEvent(context.Background(), rec, time.UTC); err == nil {
		t.Error("Expected CHECK constraint to reject invalid result")
	}
}
