package prom

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tstromberg/cachesim/internal/benchmark"
	"github.com/tstromberg/cachesim/internal/cache"
	"github.com/tstromberg/cachesim/internal/config"
	"github.com/tstromberg/cachesim/internal/workload"
)

func TestCountersMatchRunner(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(reg, "cachesim", "replay")
	require.NoError(t, err)

	cfg := config.Default()
	cfg.WorkloadSize = 500
	ops, err := workload.NewGenerator(cfg.WorkloadSeed, cfg).Generate()
	require.NoError(t, err)

	r := benchmark.NewRunner(cfg, benchmark.WithSleeper(benchmark.NoSleep), benchmark.WithMetrics(a.ForCache("lru")))
	c, err := cache.New("lru", cfg.Capacity)
	require.NoError(t, err)
	hits, misses, err := r.Run(context.Background(), c, ops)
	require.NoError(t, err)

	writes := len(ops) - workload.CountReads(ops)
	assert.InDelta(t, float64(hits), testutil.ToFloat64(a.hits.WithLabelValues("lru")), 0)
	assert.InDelta(t, float64(misses), testutil.ToFloat64(a.misses.WithLabelValues("lru")), 0)
	assert.InDelta(t, float64(writes), testutil.ToFloat64(a.writes.WithLabelValues("lru")), 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(a.hits.WithLabelValues("otter")))

	n, err := testutil.GatherAndCount(reg, "cachesim_replay_simulated_delay_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewRejectsDuplicate(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg, "cachesim", "")
	require.NoError(t, err)
	_, err = New(reg, "cachesim", "")
	require.ErrorIs(t, err, benchmark.ErrRuntimeInit)
}
