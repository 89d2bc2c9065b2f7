package workload

import (
	"fmt"
	"math/rand/v2"

	"github.com/tstromberg/cachesim/internal/cache"
	"github.com/tstromberg/cachesim/internal/config"
)

const (
	// warmupReadProbability is the chance a warmup write is followed by a read
	// of the same key.
	warmupReadProbability = 0.2

	// A warmup read of a key divisible by relatedKeyModulus also inserts
	// key+relatedKeyOffset, emulating reads that trigger a related write.
	relatedKeyModulus = 10
	relatedKeyOffset  = 1000
)

// WarmupManager primes a cache to steady-state occupancy before measurement.
// Its random stream is independent of the measured workload's.
type WarmupManager struct {
	cfg config.Config
	rng *rand.Rand
}

// NewWarmupManager returns a manager seeded with cfg.WarmupSeed.
func NewWarmupManager(cfg config.Config) *WarmupManager {
	return &WarmupManager{cfg: cfg, rng: newRand(cfg.WarmupSeed)}
}

// GenerateOps returns the priming sequence: cfg.WarmupOps() writes with keys
// in [0, 2*cfg.Capacity), some followed by a read of the same key.
func (m *WarmupManager) GenerateOps() ([]Op, error) {
	n := m.cfg.WarmupOps()
	if n <= 0 {
		return nil, fmt.Errorf("%w: warmup needs a positive capacity or warmup_size, got %d", config.ErrInvalid, n)
	}
	z, err := newZipf(m.cfg.WarmupKeySpace(), m.cfg.ZipfS)
	if err != nil {
		return nil, fmt.Errorf("warmup distribution: %w", err)
	}

	ops := make([]Op, 0, n+n/4)
	for range n {
		key := z.sample(m.rng)
		ops = append(ops, WriteOp(key, uint64(m.rng.Uint32())))
		if m.rng.Float64() < warmupReadProbability {
			ops = append(ops, ReadOp(key))
		}
	}
	return ops, nil
}

// Warm applies ops directly to c, without simulated latency or accounting.
// Only fallible caches can fail; the first failure stops the warmup.
func (m *WarmupManager) Warm(c cache.Cache, ops []Op) error {
	for i, op := range ops {
		switch op.Kind {
		case Read:
			if _, _, err := cache.Lookup(c, op.Key); err != nil {
				return fmt.Errorf("warmup op %d: %w", i, err)
			}
			if op.Key%relatedKeyModulus == 0 {
				related := op.Key + relatedKeyOffset
				if err := cache.Store(c, related, related); err != nil {
					return fmt.Errorf("warmup op %d: %w", i, err)
				}
			}
		case Write:
			if err := cache.Store(c, op.Key, op.Value); err != nil {
				return fmt.Errorf("warmup op %d: %w", i, err)
			}
		}
	}
	return nil
}
