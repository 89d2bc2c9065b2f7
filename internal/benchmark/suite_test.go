package benchmark

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSuite(t *testing.T, names ...string) *Suite {
	t.Helper()
	cfg := smallConfig()
	s, err := NewSuite(cfg, generate(t, cfg), nil)
	require.NoError(t, err)
	s.Names = names
	s.Options = []Option{WithSleeper(NoSleep)}
	return s
}

func TestCalibrate(t *testing.T) {
	s := newTestSuite(t, "unbounded", "lru")
	wantHits, wantMisses := oracle(s.ops)

	results, err := s.Calibrate(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	ub := results[0]
	assert.Equal(t, "unbounded", ub.Name)
	assert.Equal(t, wantHits, ub.Hits)
	assert.Equal(t, wantMisses, ub.Misses)
	assert.InDelta(t, CalculateHitRate(wantHits, wantMisses), ub.Rate, 1e-9)

	lru := results[1]
	assert.Equal(t, "lru", lru.Name)
	assert.LessOrEqual(t, lru.Rate, ub.Rate, "a bounded cache cannot beat one that never evicts")
}

func TestCalibrateFlagsLowHitRate(t *testing.T) {
	s := newTestSuite(t, "lru")
	s.cfg.MinHitRate = 100

	results, err := s.Calibrate(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].BelowTarget)
}

func TestCalibrateUnknownCache(t *testing.T) {
	s := newTestSuite(t, "lru", "no-such-cache")
	results, err := s.Calibrate(context.Background())
	require.ErrorIs(t, err, ErrRuntimeInit)
	assert.Len(t, results, 1)
}

func TestMeasure(t *testing.T) {
	s := newTestSuite(t)
	res, err := s.Measure(context.Background(), "unbounded")
	require.NoError(t, err)
	assert.Equal(t, "unbounded", res.Name)
	assert.Equal(t, 2, res.Samples)
	assert.Positive(t, res.Mean)
	assert.LessOrEqual(t, res.Min, res.Max)
	assert.Positive(t, res.OpsPerSec)
	assert.Greater(t, res.HitRate, 0.0)
}

func TestSuiteRunParallel(t *testing.T) {
	s := newTestSuite(t, "lru", "bogus", "sieve", "unbounded")
	s.cfg.Parallel = 3

	results, err := s.Run(context.Background())
	require.ErrorIs(t, err, ErrRuntimeInit)
	require.Len(t, results, 3)
	assert.Equal(t, "lru", results[0].Name)
	assert.Equal(t, "sieve", results[1].Name)
	assert.Equal(t, "unbounded", results[2].Name)
}

func TestSuiteRunCancelled(t *testing.T) {
	s := newTestSuite(t, "lru", "sieve")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestRunOverhead(t *testing.T) {
	if testing.Short() {
		t.Skip("runs testing.Benchmark")
	}
	results, err := RunOverhead([]string{"unbounded"}, 100)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "unbounded", results[0].Name)
	assert.Positive(t, results[0].GetNsOp)

	results, err = RunOverhead([]string{"bogus", "2q"}, 1)
	require.ErrorIs(t, err, ErrRuntimeInit)
	assert.Empty(t, results)
}
