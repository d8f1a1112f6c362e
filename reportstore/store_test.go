package reportstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkit/cadence"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_InsertAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

	first := cadence.Report{
		Stats: cadence.Stats{
			Samples:           3,
			MeanError:         10,
			MeanCompensation:  89.95,
			MaxError:          15,
			MinError:          5,
			ToleranceExceeded: 1,
			Unit:              cadence.Millisecond,
		},
		EngineID:  "sampler",
		Period:    cadence.Period{Rate: 100, Unit: cadence.Millisecond},
		StoppedAt: base,
	}
	second := first
	second.Samples = 7
	second.StoppedAt = base.Add(time.Minute)
	other := first
	other.EngineID = "flusher"
	other.StoppedAt = base.Add(2 * time.Minute)

	for _, r := range []cadence.Report{first, second, other} {
		require.NoError(t, s.Insert(ctx, r))
	}

	got, err := s.Recent(ctx, "sampler", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second, got[0])
	assert.Equal(t, first, got[1])

	all, err := s.Recent(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "flusher", all[0].EngineID)

	limited, err := s.Recent(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, other, limited[0])

	none, err := s.Recent(ctx, "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_AsReporter(t *testing.T) {
	s := openTestStore(t)

	e := cadence.New(5, cadence.Millisecond, cadence.ActionFunc(func() {}),
		cadence.WithLogger(&cadence.NoOpLogger{}),
		cadence.WithReporter(s),
		cadence.WithReportUnit(cadence.Microsecond),
	)
	time.Sleep(30 * time.Millisecond)
	e.SetRate(2, cadence.Millisecond, true)
	time.Sleep(10 * time.Millisecond)
	e.Stop()

	got, err := s.Recent(context.Background(), e.ID(), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, cadence.Period{Rate: 2, Unit: cadence.Millisecond}, got[0].Period)
	assert.Equal(t, cadence.Period{Rate: 5, Unit: cadence.Millisecond}, got[1].Period)
	for _, r := range got {
		assert.Equal(t, e.ID(), r.EngineID)
		assert.Equal(t, cadence.Microsecond, r.Unit)
		assert.Positive(t, r.Samples)
	}

	last, ok := e.LastReport()
	require.True(t, ok)
	assert.Equal(t, last.Samples, got[0].Samples)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	assert.Error(t, err)
}
