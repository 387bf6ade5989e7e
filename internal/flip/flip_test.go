package flip

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/coinflip-tui/internal/clock"
	"github.com/j-veylop/coinflip-tui/internal/entitlement"
	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/usage"
)

type fixture struct {
	clock   *clock.Manual
	engine  *entitlement.Engine
	tracker *usage.Tracker
	orch    *Orchestrator
	seen    []Result
}

func alternating() Source {
	var mu sync.Mutex
	n := 0
	return SourceFunc(func() models.Outcome {
		mu.Lock()
		defer mu.Unlock()
		n++
		if n%2 == 1 {
			return models.Heads
		}
		return models.Tails
	})
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{clock: clock.NewManual(time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC))}
	f.engine = entitlement.New(models.EntitlementRecord{}, nil, f.clock)
	f.tracker = usage.New(models.QuotaRecord{}, nil, f.clock)
	f.orch = New(f.engine, f.tracker, alternating(), ObserverFunc(func(_ context.Context, r Result) {
		f.seen = append(f.seen, r)
	}))
	f.engine.InitializeTrial()
	return f
}

func TestFlip_AcceptedChargesQuota(t *testing.T) {
	f := newFixture(t)

	res, err := f.orch.Flip(context.Background(), "  pizza?  ")
	require.NoError(t, err)
	assert.True(t, res.Accepted())
	assert.Equal(t, models.Heads, res.Record.Result)
	assert.Equal(t, "pizza?", res.Record.Question)
	assert.Equal(t, 1, res.Usage.DailyFlips)
	assert.Equal(t, usage.DailyLimit-1, res.Usage.RemainingFlips)
	require.Len(t, f.seen, 1)
}

func TestFlip_SixthFlipSoftBlocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < usage.DailyLimit; i++ {
		_, err := f.orch.Flip(ctx, "")
		require.NoError(t, err)
	}

	res, err := f.orch.Flip(ctx, "")
	assert.ErrorIs(t, err, ErrDailyLimitReached)
	assert.Equal(t, DecisionSoftBlocked, res.Decision)
	assert.Equal(t, usage.DailyLimit, f.tracker.Stats(false).TotalFlips)
	assert.Equal(t, DecisionSoftBlocked, f.seen[len(f.seen)-1].Decision)
}

func TestFlip_ExpiredTrialHardBlocked(t *testing.T) {
	f := newFixture(t)
	f.clock.Advance(8 * 24 * time.Hour)

	res, err := f.orch.Flip(context.Background(), "")
	assert.ErrorIs(t, err, ErrTrialExpired)
	assert.Equal(t, DecisionHardBlocked, res.Decision)
	assert.Zero(t, f.tracker.Stats(false).TotalFlips)
	assert.Zero(t, f.tracker.Record().DailyFlipCount)
}

func TestFlip_ProAfterCapIsAcceptedWithoutCharge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < usage.DailyLimit; i++ {
		_, _ = f.orch.Flip(ctx, "")
	}

	f.engine.SetProStatus(true)

	res, err := f.orch.Flip(ctx, "")
	require.NoError(t, err)
	assert.True(t, res.Accepted())
	assert.True(t, res.Usage.Unlimited())
	assert.Equal(t, usage.DailyLimit, f.tracker.Record().DailyFlipCount)
	assert.Equal(t, usage.DailyLimit+1, f.tracker.Record().CumulativeFlipCount)
}

func TestFlip_NewDayRestoresQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < usage.DailyLimit; i++ {
		_, _ = f.orch.Flip(ctx, "")
	}
	f.clock.Advance(24 * time.Hour)

	res, err := f.orch.Flip(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Usage.DailyFlips)
}

func TestFlip_InvalidSourceFallsBack(t *testing.T) {
	f := newFixture(t)
	f.orch.source = SourceFunc(func() models.Outcome { return "edge" })

	res, err := f.orch.Flip(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, res.Record.Result.Valid())
}

func TestFlip_ConcurrentRequestsRespectCap(t *testing.T) {
	f := newFixture(t)
	f.orch.observers = nil

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, _ := f.orch.Flip(context.Background(), "")
			if res.Accepted() {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, usage.DailyLimit, accepted)
	rec := f.tracker.Record()
	assert.Equal(t, rec.CumulativeFlipCount, rec.HeadsCount+rec.TailsCount)
	assert.Equal(t, usage.DailyLimit, rec.CumulativeFlipCount)
}

func TestRandomSource_ProducesBothFaces(t *testing.T) {
	seen := map[models.Outcome]bool{}
	for i := 0; i < 200 && len(seen) < 2; i++ {
		seen[RandomSource.Draw()] = true
	}
	assert.Len(t, seen, 2)
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "accepted", DecisionAccepted.String())
	assert.Equal(t, "hard_blocked", DecisionHardBlocked.String())
	assert.Equal(t, "soft_blocked", DecisionSoftBlocked.String())
	assert.Equal(t, "unknown", Decision(9).String())
}
