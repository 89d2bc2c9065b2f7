package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jamiealquiza/tachymeter"
	"golang.org/x/sync/errgroup"

	"github.com/tstromberg/cachesim/internal/cache"
	"github.com/tstromberg/cachesim/internal/config"
	"github.com/tstromberg/cachesim/internal/workload"
)

// ErrRuntimeInit is wrapped by errors raised while setting up a measurement,
// before any operation is replayed.
var ErrRuntimeInit = errors.New("runtime initialization failed")

// TimingResult summarizes the timed replays of one cache.
type TimingResult struct {
	Name      string        `json:"name"`
	Samples   int           `json:"samples"`
	Mean      time.Duration `json:"mean"`
	P50       time.Duration `json:"p50"`
	P95       time.Duration `json:"p95"`
	Min       time.Duration `json:"min"`
	Max       time.Duration `json:"max"`
	OpsPerSec float64       `json:"opsPerSec"`
	HitRate   float64       `json:"hitRate"` // mean over samples

	// Occupancy is the entry count after warmup, for caches that report one.
	Occupancy int `json:"occupancy,omitempty"`
}

// Suite runs calibration and timing over a fixed operation sequence.
type Suite struct {
	cfg  config.Config
	ops  []workload.Op
	warm []workload.Op
	log  *slog.Logger

	// Names selects the caches to measure; nil means cache.AllNames().
	Names []string
	// Options are applied to every Runner the suite creates.
	Options []Option
	// Metrics, if set, supplies per-cache metrics for every replay.
	Metrics func(name string) Metrics
}

// NewSuite prepares a suite for ops. The warmup sequence is generated once
// and shared by every sample.
func NewSuite(cfg config.Config, ops []workload.Op, log *slog.Logger) (*Suite, error) {
	warm, err := workload.NewWarmupManager(cfg).GenerateOps()
	if err != nil {
		return nil, fmt.Errorf("generate warmup: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Suite{cfg: cfg, ops: ops, warm: warm, log: log}, nil
}

func (s *Suite) names() []string {
	if s.Names != nil {
		return s.Names
	}
	return cache.AllNames()
}

func (s *Suite) runner(name string) *Runner {
	opts := append([]Option{WithLogger(s.log)}, s.Options...)
	if s.Metrics != nil {
		opts = append(opts, WithMetrics(s.Metrics(name)))
	}
	return NewRunner(s.cfg, opts...)
}

func (s *Suite) newCache(name string) (cache.Cache, error) {
	c, err := cache.New(name, s.cfg.Capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntimeInit, err)
	}
	return c, nil
}

// Calibrate replays the sequence once per cache on a fresh, cold instance
// and reports the hit rates. Caches that fail are logged and skipped; their
// errors are joined into the returned error.
func (s *Suite) Calibrate(ctx context.Context) ([]HitRateResult, error) {
	var (
		results []HitRateResult
		errs    []error
	)
	for _, name := range s.names() {
		c, err := s.newCache(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		hits, misses, err := s.runner(name).Run(ctx, c, s.ops)
		c.Close()
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		if err != nil {
			s.log.Warn("calibration failed", "cache", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		r := HitRateResult{Name: name, Hits: hits, Misses: misses, Rate: CalculateHitRate(hits, misses)}
		if r.Rate < s.cfg.MinHitRate {
			r.BelowTarget = true
			s.log.Warn("hit rate below target", "cache", name,
				"hit_rate", fmt.Sprintf("%.2f%%", r.Rate), "target", fmt.Sprintf("%.2f%%", s.cfg.MinHitRate))
		}
		results = append(results, r)
	}
	return results, errors.Join(errs...)
}

// Measure times cfg.Samples replays of one cache. Every sample gets a fresh
// instance primed with the warmup sequence; only the replay is timed.
func (s *Suite) Measure(ctx context.Context, name string) (TimingResult, error) {
	samples := s.cfg.Samples
	t := tachymeter.New(&tachymeter.Config{Size: samples})
	r := s.runner(name)

	var (
		rateSum   float64
		occupancy int
	)
	for i := range samples {
		c, err := s.newCache(name)
		if err != nil {
			return TimingResult{}, err
		}
		if err := workload.NewWarmupManager(s.cfg).Warm(c, s.warm); err != nil {
			c.Close()
			return TimingResult{}, fmt.Errorf("sample %d: %w", i, err)
		}
		if n, ok := cache.Occupancy(c); ok && i == 0 {
			occupancy = n
			s.log.Debug("warmed", "cache", name, "entries", n, "capacity", s.cfg.Capacity)
		}

		start := time.Now()
		hits, misses, err := r.Run(ctx, c, s.ops)
		elapsed := time.Since(start)
		c.Close()
		if err != nil {
			return TimingResult{}, fmt.Errorf("sample %d: %w", i, err)
		}
		t.AddTime(elapsed)
		rateSum += CalculateHitRate(hits, misses)
	}

	m := t.Calc()
	res := TimingResult{
		Name:      name,
		Samples:   samples,
		Mean:      m.Time.Avg,
		P50:       m.Time.P50,
		P95:       m.Time.P95,
		Min:       m.Time.Min,
		Max:       m.Time.Max,
		HitRate:   rateSum / float64(samples),
		Occupancy: occupancy,
	}
	if m.Time.Avg > 0 {
		res.OpsPerSec = float64(len(s.ops)) / m.Time.Avg.Seconds()
	}
	s.log.Debug("measured", "cache", name, "mean", res.Mean, "p95", res.P95, "hit_rate", res.HitRate)
	return res, nil
}

// Run measures every selected cache, up to cfg.Parallel at a time. Results
// keep the selection order. Caches that fail are logged and left out; their
// errors are joined into the returned error. Cancellation stops the run.
func (s *Suite) Run(ctx context.Context) ([]TimingResult, error) {
	names := s.names()
	slots := make([]*TimingResult, len(names))
	errs := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.Parallel, 1))

	var mu sync.Mutex
	done := 0
	for i, name := range names {
		g.Go(func() error {
			res, err := s.Measure(gctx, name)
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if err != nil {
				s.log.Warn("measurement failed", "cache", name, "error", err)
				errs[i] = fmt.Errorf("%s: %w", name, err)
				return nil
			}
			slots[i] = &res

			mu.Lock()
			done++
			s.log.Info("measured cache", "cache", name, "progress", fmt.Sprintf("%d/%d", done, len(names)))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]TimingResult, 0, len(names))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, errors.Join(errs...)
}
