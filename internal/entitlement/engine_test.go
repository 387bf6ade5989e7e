package entitlement

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/coinflip-tui/internal/clock"
	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/store"
)

func newTestEngine(t *testing.T, start time.Time) (*Engine, *clock.Manual, *store.Memory) {
	t.Helper()
	clk := clock.NewManual(start)
	kv := store.NewMemory()
	return New(models.EntitlementRecord{}, store.Sync{KV: kv}, clk), clk, kv
}

func TestEngine_TrialDaysRemaining(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for d := 0; d <= 10; d++ {
		e, clk, _ := newTestEngine(t, start)
		e.InitializeTrial()
		clk.Advance(time.Duration(d) * 24 * time.Hour)

		want := max(0, TrialDurationDays-d)
		assert.Equal(t, want, e.TrialDaysRemaining(), "day %d", d)
		assert.Equal(t, want > 0, e.IsTrialActive(), "day %d", d)
		assert.Equal(t, want == 0, e.IsTrialExpired(), "day %d", d)
	}
}

func TestEngine_NoPartialDayGrace(t *testing.T) {
	e, clk, _ := newTestEngine(t, time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC))
	e.InitializeTrial()

	clk.Advance(2 * time.Minute)
	assert.Equal(t, TrialDurationDays-1, e.TrialDaysRemaining())
}

func TestEngine_UnstartedTrialIsActive(t *testing.T) {
	e, _, _ := newTestEngine(t, time.Now())

	s := e.Status()
	assert.False(t, s.TrialStarted)
	assert.True(t, s.TrialActive)
	assert.True(t, s.CanUseApp)
	assert.Equal(t, TrialDurationDays, s.TrialDaysRemaining)
	assert.Equal(t, models.TierTrial, s.Tier())
}

func TestEngine_InitializeTrialIsIdempotent(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	e, clk, kv := newTestEngine(t, start)

	assert.True(t, e.InitializeTrial())
	first := *e.Record().TrialStartTimestamp

	clk.Advance(time.Hour)
	assert.False(t, e.InitializeTrial())
	assert.True(t, first.Equal(*e.Record().TrialStartTimestamp))
	assert.Equal(t, 1, kv.Saves())
}

func TestEngine_ExpiredTrialBlocks(t *testing.T) {
	e, clk, _ := newTestEngine(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	e.InitializeTrial()
	clk.Advance(8 * 24 * time.Hour)

	assert.True(t, e.IsTrialExpired())
	assert.False(t, e.CanUseApp())
	assert.Equal(t, models.TierExpired, e.Status().Tier())
}

func TestEngine_ProOverridesTrial(t *testing.T) {
	e, clk, _ := newTestEngine(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	e.InitializeTrial()
	clk.Advance(30 * 24 * time.Hour)
	require.False(t, e.CanUseApp())

	e.SetProStatus(true)

	s := e.Status()
	assert.True(t, s.CanUseApp)
	assert.False(t, s.TrialActive)
	assert.False(t, s.TrialExpired)
	assert.Equal(t, models.TierPro, s.Tier())

	clk.Advance(365 * 24 * time.Hour)
	assert.True(t, e.CanUseApp())
}

func TestEngine_Reset(t *testing.T) {
	e, clk, _ := newTestEngine(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	e.InitializeTrial()
	e.SetProStatus(true)
	clk.Advance(10 * 24 * time.Hour)

	e.Reset()
	assert.False(t, e.IsPro())
	assert.Nil(t, e.Record().TrialStartTimestamp)

	e.InitializeTrial()
	assert.Equal(t, TrialDurationDays, e.TrialDaysRemaining())
	assert.True(t, e.Record().TrialStartTimestamp.Equal(clk.Now()))
}

func TestEngine_OnChange(t *testing.T) {
	e, _, _ := newTestEngine(t, time.Now())

	var got []models.EntitlementStatus
	e.OnChange(func(s models.EntitlementStatus) { got = append(got, s) })

	e.InitializeTrial()
	e.SetProStatus(true)
	e.SetProStatus(true) // no change, no callback

	require.Len(t, got, 2)
	assert.True(t, got[0].TrialStarted)
	assert.True(t, got[1].IsPro)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clk := clock.NewManual(start.Add(2 * 24 * time.Hour))

	t.Run("round trip", func(t *testing.T) {
		kv := store.NewMemory()
		data, _ := json.Marshal(models.EntitlementRecord{TrialStartTimestamp: &start, ProStatus: false})
		kv.Put(store.KeyEntitlement, data)

		e := Load(ctx, kv, nil, clk)
		assert.Equal(t, 5, e.TrialDaysRemaining())
	})

	t.Run("corrupt state fails open", func(t *testing.T) {
		kv := store.NewMemory()
		kv.Put(store.KeyEntitlement, []byte("{garbage"))

		e := Load(ctx, kv, nil, clk)
		assert.False(t, e.Status().TrialStarted)
		assert.True(t, e.CanUseApp())
	})

	t.Run("missing state", func(t *testing.T) {
		e := Load(ctx, store.NewMemory(), nil, clk)
		assert.True(t, e.CanUseApp())
		assert.False(t, e.IsPro())
	})
}

func TestEngine_PersistsOnMutation(t *testing.T) {
	e, _, kv := newTestEngine(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	e.InitializeTrial()
	e.SetProStatus(true)

	var rec models.EntitlementRecord
	found, err := store.LoadJSON(context.Background(), kv, store.KeyEntitlement, &rec)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, rec.ProStatus)
	assert.NotNil(t, rec.TrialStartTimestamp)
}

func TestEngine_SaveFailureKeepsMemoryState(t *testing.T) {
	e, _, kv := newTestEngine(t, time.Now())
	kv.FailSaves(assert.AnError)

	e.SetProStatus(true)
	assert.True(t, e.IsPro())
}

func TestEngine_ConcurrentAccess(t *testing.T) {
	e, _, _ := newTestEngine(t, time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			e.SetProStatus(i%2 == 0)
		}(i)
		go func() {
			defer wg.Done()
			s := e.Status()
			// Exactly one access state holds.
			n := 0
			for _, b := range []bool{s.IsPro, s.TrialActive, s.TrialExpired} {
				if b {
					n++
				}
			}
			assert.Equal(t, 1, n)
		}()
	}
	wg.Wait()
}
