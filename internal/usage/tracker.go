// Package usage tracks the daily flip cap and the flip ledger.
package usage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/j-veylop/coinflip-tui/internal/clock"
	"github.com/j-veylop/coinflip-tui/internal/logger"
	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/store"
)

const (
	// DailyLimit is the number of flips a non-Pro user may make per day.
	DailyLimit = 5
	// FreeHistoryLimit is how many records a non-Pro user can see.
	FreeHistoryLimit = 10
	// ProHistoryLimit is how many records a Pro user can see.
	ProHistoryLimit = 100
	// MaxStoredFlips caps the stored log at the larger tier limit so an
	// upgrade reveals history kept while on the free tier.
	MaxStoredFlips = ProHistoryLimit
	// Unlimited is returned by RemainingFlips for Pro users.
	Unlimited = -1
)

// Tracker is the quota state machine. All methods are safe for concurrent use.
type Tracker struct {
	mu    sync.RWMutex
	rec   models.QuotaRecord
	clock clock.Clock
	saver store.Saver
	newID func() string
}

// New returns a tracker holding rec. Invalid counters are sanitized. A nil
// saver disables persistence.
func New(rec models.QuotaRecord, saver store.Saver, clk clock.Clock) *Tracker {
	if clk == nil {
		clk = clock.NewSystem(nil)
	}
	return &Tracker{
		rec:   sanitize(rec, clk.Today()),
		clock: clk,
		saver: saver,
		newID: uuid.NewString,
	}
}

// Load restores the tracker from kv. Missing or unreadable state yields zero
// usage.
func Load(ctx context.Context, kv store.KV, saver store.Saver, clk clock.Clock) *Tracker {
	var rec models.QuotaRecord
	if _, err := store.LoadJSON(ctx, kv, store.KeyQuota, &rec); err != nil {
		logger.Warn("quota state unreadable, starting from zero", "error", err)
		rec = models.QuotaRecord{}
	}
	return New(rec, saver, clk)
}

// sanitize repairs a record that could not have been produced by the
// tracker, falling back to zero for the parts that are inconsistent. A
// damaged daily counter always resolves to a fresh day, never to an
// exhausted one.
func sanitize(rec models.QuotaRecord, today clock.Date) models.QuotaRecord {
	if rec.DailyFlipCount < 0 || rec.CumulativeFlipCount < 0 || rec.HeadsCount < 0 || rec.TailsCount < 0 {
		logger.Warn("negative quota counters, resetting")
		return models.QuotaRecord{}
	}
	if rec.HeadsCount+rec.TailsCount != rec.CumulativeFlipCount {
		logger.Warn("quota tallies disagree, recomputing cumulative count",
			"heads", rec.HeadsCount, "tails", rec.TailsCount, "cumulative", rec.CumulativeFlipCount)
		rec.CumulativeFlipCount = rec.HeadsCount + rec.TailsCount
	}
	if rec.LastFlipDate != "" && !clock.Date(rec.LastFlipDate).Valid() {
		rec.LastFlipDate = ""
		rec.DailyFlipCount = 0
	}
	if rec.LastFlipDate > today.String() {
		logger.Warn("quota date is in the future, treating as stale", "lastFlipDate", rec.LastFlipDate, "today", today)
		rec.LastFlipDate = ""
		rec.DailyFlipCount = 0
	}
	if rec.DailyFlipCount > DailyLimit {
		logger.Warn("daily flip count above the limit, resetting", "dailyFlipCount", rec.DailyFlipCount)
		rec.DailyFlipCount = 0
	}

	log := make([]models.FlipRecord, 0, min(len(rec.FlipLog), MaxStoredFlips))
	for _, r := range rec.FlipLog {
		if !r.Result.Valid() {
			continue
		}
		log = append(log, r)
		if len(log) == MaxStoredFlips {
			break
		}
	}
	rec.FlipLog = log
	return rec
}

// ResetDailyFlipsIfNewDay zeroes the daily counter when the last recorded
// flip day is not today.
func (t *Tracker) ResetDailyFlipsIfNewDay() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rolloverLocked() {
		t.persistLocked()
	}
}

// CanFlip reports whether another flip is allowed today.
func (t *Tracker) CanFlip(isPro bool) bool {
	if isPro {
		return true
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dailyCountLocked() < DailyLimit
}

// RemainingFlips returns flips left today, or Unlimited for Pro.
func (t *Tracker) RemainingFlips(isPro bool) int {
	if isPro {
		return Unlimited
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return max(0, DailyLimit-t.dailyCountLocked())
}

// IncrementDailyFlips charges one flip against today's cap.
func (t *Tracker) IncrementDailyFlips() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.incrementLocked()
	t.persistLocked()
}

// AddFlip records a flip at the head of the log and updates the tallies.
func (t *Tracker) AddFlip(result models.Outcome, question string) models.FlipRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := t.addLocked(result, question)
	t.persistLocked()
	return rec
}

// Accept records an accepted flip and, for non-Pro users, charges the daily
// cap, as one step. It returns false without mutating anything when a
// non-Pro user has no flips left.
func (t *Tracker) Accept(result models.Outcome, question string, isPro bool) (models.FlipRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rolled := t.rolloverLocked()
	if !isPro && t.rec.DailyFlipCount >= DailyLimit {
		if rolled {
			t.persistLocked()
		}
		return models.FlipRecord{}, false
	}

	rec := t.addLocked(result, question)
	if !isPro {
		t.incrementLocked()
	}
	t.persistLocked()
	return rec, true
}

// VisibleFlips returns the newest records the tier may see, newest first.
func (t *Tracker) VisibleFlips(isPro bool) []models.FlipRecord {
	limit := FreeHistoryLimit
	if isPro {
		limit = ProHistoryLimit
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := min(len(t.rec.FlipLog), limit)
	out := make([]models.FlipRecord, n)
	copy(out, t.rec.FlipLog[:n])
	return out
}

// ClearHistory empties the log and zeroes every counter.
func (t *Tracker) ClearHistory() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rec = models.QuotaRecord{
		LastFlipDate: t.clock.Today().String(),
		FlipLog:      []models.FlipRecord{},
	}
	t.persistLocked()
}

// ResetDailyFlips zeroes only today's counter.
func (t *Tracker) ResetDailyFlips() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rec.DailyFlipCount = 0
	t.rec.LastFlipDate = t.clock.Today().String()
	t.persistLocked()
}

// Stats returns a consistent snapshot of the ledger for a tier.
func (t *Tracker) Stats(isPro bool) models.UsageStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	daily := t.dailyCountLocked()
	remaining := Unlimited
	if !isPro {
		remaining = max(0, DailyLimit-daily)
	}
	return models.UsageStats{
		Today:          t.clock.Today().String(),
		DailyFlips:     daily,
		DailyLimit:     DailyLimit,
		RemainingFlips: remaining,
		TotalFlips:     t.rec.CumulativeFlipCount,
		HeadsCount:     t.rec.HeadsCount,
		TailsCount:     t.rec.TailsCount,
		LoggedFlips:    len(t.rec.FlipLog),
	}
}

// Record returns a deep copy of the persisted record.
func (t *Tracker) Record() models.QuotaRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.copyLocked()
}

// dailyCountLocked reads the daily counter, treating a stale date as zero.
func (t *Tracker) dailyCountLocked() int {
	if t.rec.LastFlipDate != t.clock.Today().String() {
		return 0
	}
	return t.rec.DailyFlipCount
}

func (t *Tracker) rolloverLocked() bool {
	today := t.clock.Today().String()
	if t.rec.LastFlipDate == today {
		return false
	}
	t.rec.DailyFlipCount = 0
	t.rec.LastFlipDate = today
	return true
}

func (t *Tracker) incrementLocked() {
	t.rolloverLocked()
	t.rec.DailyFlipCount++
}

func (t *Tracker) addLocked(result models.Outcome, question string) models.FlipRecord {
	rec := models.FlipRecord{
		ID:        t.newID(),
		Result:    result,
		Timestamp: t.clock.Now(),
		Question:  question,
	}

	log := make([]models.FlipRecord, 0, min(len(t.rec.FlipLog)+1, MaxStoredFlips))
	log = append(log, rec)
	for _, r := range t.rec.FlipLog {
		if len(log) == MaxStoredFlips {
			break
		}
		log = append(log, r)
	}
	t.rec.FlipLog = log

	t.rec.CumulativeFlipCount++
	if result == models.Heads {
		t.rec.HeadsCount++
	} else {
		t.rec.TailsCount++
	}
	return rec
}

func (t *Tracker) copyLocked() models.QuotaRecord {
	rec := t.rec
	rec.FlipLog = make([]models.FlipRecord, len(t.rec.FlipLog))
	copy(rec.FlipLog, t.rec.FlipLog)
	return rec
}

func (t *Tracker) persistLocked() {
	if t.saver == nil {
		return
	}
	data, err := json.Marshal(t.rec)
	if err != nil {
		logger.Error("failed to encode quota state", "error", err)
		return
	}
	t.saver.Enqueue(store.KeyQuota, data)
}
