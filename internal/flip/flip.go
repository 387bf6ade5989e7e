// Package flip runs a single flip request through the entitlement gate and
// the daily quota, then draws and records the outcome.
package flip

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/j-veylop/coinflip-tui/internal/logger"
	"github.com/j-veylop/coinflip-tui/internal/models"
)

var (
	// ErrTrialExpired is returned when the app is not usable (hard block).
	ErrTrialExpired = errors.New("trial expired: upgrade to keep flipping")
	// ErrDailyLimitReached is returned when today's free flips are used (soft block).
	ErrDailyLimitReached = errors.New("daily flip limit reached")
)

// Decision is the outcome of the gating protocol.
type Decision int

const (
	// DecisionAccepted means the flip was drawn and recorded.
	DecisionAccepted Decision = iota
	// DecisionHardBlocked means the app is unusable; show the blocking paywall.
	DecisionHardBlocked
	// DecisionSoftBlocked means the daily cap is exhausted; show the dismissible paywall.
	DecisionSoftBlocked
)

// String returns the decision label used in logs and metrics.
func (d Decision) String() string {
	switch d {
	case DecisionAccepted:
		return "accepted"
	case DecisionHardBlocked:
		return "hard_blocked"
	case DecisionSoftBlocked:
		return "soft_blocked"
	default:
		return "unknown"
	}
}

// Gate is the entitlement side of the protocol.
type Gate interface {
	Status() models.EntitlementStatus
}

// Ledger is the quota side of the protocol.
type Ledger interface {
	ResetDailyFlipsIfNewDay()
	CanFlip(isPro bool) bool
	Accept(result models.Outcome, question string, isPro bool) (models.FlipRecord, bool)
	Stats(isPro bool) models.UsageStats
}

// Source draws a fair coin.
type Source interface {
	Draw() models.Outcome
}

// SourceFunc adapts a function to Source.
type SourceFunc func() models.Outcome

// Draw calls f.
func (f SourceFunc) Draw() models.Outcome { return f() }

// RandomSource draws from the runtime's uniform generator.
var RandomSource Source = SourceFunc(func() models.Outcome {
	if rand.IntN(2) == 0 {
		return models.Heads
	}
	return models.Tails
})

// Result describes what happened to one flip request.
type Result struct {
	Entitlement models.EntitlementStatus
	Record      models.FlipRecord
	Usage       models.UsageStats
	Decision    Decision
}

// Accepted reports whether the flip was recorded.
func (r Result) Accepted() bool {
	return r.Decision == DecisionAccepted
}

// Observer is told about every request after it has been decided.
type Observer interface {
	ObserveFlip(ctx context.Context, r Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, r Result)

// ObserveFlip calls f.
func (f ObserverFunc) ObserveFlip(ctx context.Context, r Result) { f(ctx, r) }

// Orchestrator serializes flip requests.
type Orchestrator struct {
	mu        sync.Mutex
	gate      Gate
	ledger    Ledger
	source    Source
	observers []Observer
}

// New creates an orchestrator. A nil source uses RandomSource.
func New(gate Gate, ledger Ledger, source Source, observers ...Observer) *Orchestrator {
	if source == nil {
		source = RandomSource
	}
	return &Orchestrator{
		gate:      gate,
		ledger:    ledger,
		source:    source,
		observers: observers,
	}
}

// Flip runs one request. Blocked requests return a Result with the decision
// and the matching sentinel error; nothing is mutated in that case.
func (o *Orchestrator) Flip(ctx context.Context, question string) (Result, error) {
	question = strings.TrimSpace(question)

	res, err := o.decide(question)

	logger.Debug("flip decided", "decision", res.Decision.String(), "result", string(res.Record.Result))
	for _, obs := range o.observers {
		obs.ObserveFlip(ctx, res)
	}
	return res, err
}

func (o *Orchestrator) decide(question string) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	status := o.gate.Status()
	if !status.CanUseApp {
		return Result{
			Decision:    DecisionHardBlocked,
			Entitlement: status,
			Usage:       o.ledger.Stats(false),
		}, ErrTrialExpired
	}

	o.ledger.ResetDailyFlipsIfNewDay()
	if !status.IsPro && !o.ledger.CanFlip(false) {
		return o.softBlocked(status), ErrDailyLimitReached
	}

	outcome := o.source.Draw()
	if !outcome.Valid() {
		outcome = RandomSource.Draw()
	}

	rec, ok := o.ledger.Accept(outcome, question, status.IsPro)
	if !ok {
		return o.softBlocked(status), ErrDailyLimitReached
	}

	return Result{
		Decision:    DecisionAccepted,
		Record:      rec,
		Entitlement: status,
		Usage:       o.ledger.Stats(status.IsPro),
	}, nil
}

func (o *Orchestrator) softBlocked(status models.EntitlementStatus) Result {
	return Result{
		Decision:    DecisionSoftBlocked,
		Entitlement: status,
		Usage:       o.ledger.Stats(false),
	}
}
