package benchmark

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/tstromberg/cachesim/internal/cache"
	"github.com/tstromberg/cachesim/internal/config"
	"github.com/tstromberg/cachesim/internal/workload"
)

// Runner replays an operation sequence against one cache, treating it as a
// cache-aside layer in front of a slow backend.
type Runner struct {
	cfg     config.Config
	sleeper Sleeper
	metrics Metrics
	log     *slog.Logger
	seed    uint64
	seeded  bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithSleeper replaces the timer-based sleeper.
func WithSleeper(s Sleeper) Option {
	return func(r *Runner) { r.sleeper = s }
}

// WithLatencySeed makes simulated delays reproducible. By default every run
// draws its latency seed from process entropy.
func WithLatencySeed(seed uint64) Option {
	return func(r *Runner) {
		r.seed = seed
		r.seeded = true
	}
}

// WithMetrics reports hits, misses, writes and delays to m.
func WithMetrics(m Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithLogger sets the logger for per-run summaries.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// NewRunner returns a runner that simulates latency per cfg's delay bounds.
func NewRunner(cfg config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		sleeper: TimerSleeper,
		metrics: NoopMetrics{},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run replays ops against c in order and returns the read hit and miss
// counts. A read miss pays a simulated delay and then fills the key with its
// own value; a write pays the delay and stores its value. Writes are not
// counted.
//
// Run does not close c. If ctx is cancelled during a delay, the partial
// counts are discarded and ctx's error is returned. Delay bounds that fail
// config.Config.ValidateLatency are rejected before any op runs.
func (r *Runner) Run(ctx context.Context, c cache.Cache, ops []workload.Op) (hits, misses uint64, err error) {
	if err := r.cfg.ValidateLatency(); err != nil {
		return 0, 0, err
	}
	seed := r.seed
	if !r.seeded {
		seed = rand.Uint64() //nolint:gosec // simulation, not security
	}
	lat := newLatency(r.cfg.MinDelayUS, r.cfg.MaxDelayUS, seed)

	backend := func() error {
		d := lat.next()
		r.metrics.Delay(d)
		return r.sleeper.Sleep(ctx, d)
	}

	for i, op := range ops {
		switch op.Kind {
		case workload.Read:
			_, ok, err := cache.Lookup(c, op.Key)
			if err != nil {
				return 0, 0, fmt.Errorf("op %d: %w", i, err)
			}
			if ok {
				hits++
				r.metrics.Hit()
				continue
			}
			misses++
			r.metrics.Miss()
			if err := backend(); err != nil {
				return 0, 0, err
			}
			if err := cache.Store(c, op.Key, op.Key); err != nil {
				return 0, 0, fmt.Errorf("op %d: %w", i, err)
			}
		case workload.Write:
			r.metrics.Write()
			if err := backend(); err != nil {
				return 0, 0, err
			}
			if err := cache.Store(c, op.Key, op.Value); err != nil {
				return 0, 0, fmt.Errorf("op %d: %w", i, err)
			}
		}
	}

	r.log.Debug("replay done", "cache", c.Name(), "ops", len(ops),
		"hits", hits, "misses", misses, "hit_rate", CalculateHitRate(hits, misses))
	return hits, misses, nil
}

// RunCache replays ops against c with a default Runner.
func RunCache(ctx context.Context, cfg config.Config, c cache.Cache, ops []workload.Op) (hits, misses uint64, err error) {
	return NewRunner(cfg).Run(ctx, c, ops)
}
