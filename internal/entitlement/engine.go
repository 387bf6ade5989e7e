// Package entitlement owns the trial lifecycle and Pro status, and decides
// whether the app may be used at all.
package entitlement

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/j-veylop/coinflip-tui/internal/clock"
	"github.com/j-veylop/coinflip-tui/internal/logger"
	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/store"
)

// TrialDurationDays is the length of the free trial.
const TrialDurationDays = 7

// Engine is the entitlement state machine. All methods are safe for
// concurrent use; reads observe a consistent snapshot.
type Engine struct {
	mu       sync.RWMutex
	rec      models.EntitlementRecord
	clock    clock.Clock
	saver    store.Saver
	onChange func(models.EntitlementStatus)
}

// New returns an engine holding rec. A nil saver disables persistence.
func New(rec models.EntitlementRecord, saver store.Saver, clk clock.Clock) *Engine {
	if clk == nil {
		clk = clock.NewSystem(nil)
	}
	if rec.TrialStartTimestamp != nil {
		ts := *rec.TrialStartTimestamp
		rec.TrialStartTimestamp = &ts
	}
	return &Engine{rec: rec, clock: clk, saver: saver}
}

// Load restores the engine from kv. Missing or unreadable state yields a
// trial that has not started yet.
func Load(ctx context.Context, kv store.KV, saver store.Saver, clk clock.Clock) *Engine {
	var rec models.EntitlementRecord
	found, err := store.LoadJSON(ctx, kv, store.KeyEntitlement, &rec)
	if err != nil {
		logger.Warn("entitlement state unreadable, starting fresh", "error", err)
		rec = models.EntitlementRecord{}
	} else if !found {
		logger.Debug("no entitlement state stored")
	}
	return New(rec, saver, clk)
}

// OnChange registers fn to be called with the new status after every
// mutation. fn runs outside the engine lock.
func (e *Engine) OnChange(fn func(models.EntitlementStatus)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// InitializeTrial starts the trial if it has not started. It reports whether
// this call started it.
func (e *Engine) InitializeTrial() bool {
	e.mu.Lock()
	if e.rec.TrialStartTimestamp != nil {
		e.mu.Unlock()
		return false
	}
	now := e.clock.Now()
	e.rec.TrialStartTimestamp = &now
	e.persistLocked()
	status, fn := e.statusLocked(now), e.onChange
	e.mu.Unlock()

	logger.Info("trial started", "at", now.Format(time.RFC3339))
	notify(fn, status)
	return true
}

// SetProStatus records a confirmed purchase or restore (or clears it).
func (e *Engine) SetProStatus(pro bool) {
	e.mu.Lock()
	if e.rec.ProStatus == pro {
		e.mu.Unlock()
		return
	}
	e.rec.ProStatus = pro
	e.persistLocked()
	status, fn := e.statusLocked(e.clock.Now()), e.onChange
	e.mu.Unlock()

	logger.Info("pro status changed", "pro", pro)
	notify(fn, status)
}

// Reset clears Pro status and un-starts the trial, so the next
// InitializeTrial starts a fresh one.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.rec = models.EntitlementRecord{}
	e.persistLocked()
	status, fn := e.statusLocked(e.clock.Now()), e.onChange
	e.mu.Unlock()

	logger.Info("entitlement reset")
	notify(fn, status)
}

// IsPro reports whether a purchase or restore has been confirmed.
func (e *Engine) IsPro() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rec.ProStatus
}

// TrialDaysRemaining returns whole trial days left. A trial that has not
// started has the full duration remaining.
func (e *Engine) TrialDaysRemaining() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.daysRemainingLocked(e.clock.Now())
}

// IsTrialActive reports whether the user is on a running trial.
func (e *Engine) IsTrialActive() bool {
	return e.Status().TrialActive
}

// IsTrialExpired reports whether the trial has run out without a purchase.
func (e *Engine) IsTrialExpired() bool {
	return e.Status().TrialExpired
}

// CanUseApp is the hard gate: Pro or an active trial.
func (e *Engine) CanUseApp() bool {
	return e.Status().CanUseApp
}

// Status returns every derived value computed at one instant.
func (e *Engine) Status() models.EntitlementStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.statusLocked(e.clock.Now())
}

// Record returns a copy of the persisted record.
func (e *Engine) Record() models.EntitlementRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec := e.rec
	if rec.TrialStartTimestamp != nil {
		ts := *rec.TrialStartTimestamp
		rec.TrialStartTimestamp = &ts
	}
	return rec
}

func (e *Engine) daysRemainingLocked(now time.Time) int {
	if e.rec.TrialStartTimestamp == nil {
		return TrialDurationDays
	}
	elapsed := clock.DaysBetween(*e.rec.TrialStartTimestamp, now, e.clock.Location())
	return max(0, TrialDurationDays-elapsed)
}

func (e *Engine) statusLocked(now time.Time) models.EntitlementStatus {
	remaining := e.daysRemainingLocked(now)
	pro := e.rec.ProStatus

	s := models.EntitlementStatus{
		CheckedAt:          now,
		TrialDaysRemaining: remaining,
		TrialDurationDays:  TrialDurationDays,
		IsPro:              pro,
		TrialStarted:       e.rec.TrialStartTimestamp != nil,
		TrialActive:        !pro && remaining > 0,
		TrialExpired:       !pro && remaining <= 0,
	}
	s.CanUseApp = pro || s.TrialActive
	if e.rec.TrialStartTimestamp != nil {
		ts := *e.rec.TrialStartTimestamp
		s.TrialStart = &ts
	}
	return s
}

// persistLocked hands a snapshot to the saver. Called with mu held so
// snapshots are enqueued in mutation order.
func (e *Engine) persistLocked() {
	if e.saver == nil {
		return
	}
	data, err := json.Marshal(e.rec)
	if err != nil {
		logger.Error("failed to encode entitlement state", "error", err)
		return
	}
	e.saver.Enqueue(store.KeyEntitlement, data)
}

func notify(fn func(models.EntitlementStatus), s models.EntitlementStatus) {
	if fn != nil {
		fn(s)
	}
}
