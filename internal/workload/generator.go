package workload

import (
	"fmt"
	"math/rand/v2"

	"github.com/tstromberg/cachesim/internal/config"
)

// newRand returns the seeded source shared by every generator in this package.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

// Generator produces the measured operation sequence.
type Generator struct {
	cfg config.Config
	rng *rand.Rand
}

// NewGenerator returns a generator for cfg seeded with seed. Two generators
// built from the same seed and config produce identical sequences.
func NewGenerator(seed uint64, cfg config.Config) *Generator {
	return &Generator{cfg: cfg, rng: newRand(seed)}
}

// Generate returns exactly cfg.WorkloadSize ops with keys in [0, cfg.TotalKeys).
// Each call continues the generator's random stream.
func (g *Generator) Generate() ([]Op, error) {
	if g.cfg.WorkloadSize <= 0 {
		return nil, fmt.Errorf("%w: workload_size must be positive, got %d", config.ErrInvalid, g.cfg.WorkloadSize)
	}
	if !(g.cfg.ReadRatio >= 0 && g.cfg.ReadRatio <= 1) {
		return nil, fmt.Errorf("%w: read_ratio must be within [0, 1], got %v", config.ErrInvalid, g.cfg.ReadRatio)
	}
	z, err := newZipf(g.cfg.TotalKeys, g.cfg.ZipfS)
	if err != nil {
		return nil, fmt.Errorf("workload distribution: %w", err)
	}

	ops := make([]Op, 0, g.cfg.WorkloadSize)
	for range g.cfg.WorkloadSize {
		key := z.sample(g.rng)
		if g.rng.Float64() < g.cfg.ReadRatio {
			ops = append(ops, ReadOp(key))
			continue
		}
		ops = append(ops, WriteOp(key, uint64(g.rng.Uint32())))
	}
	return ops, nil
}
