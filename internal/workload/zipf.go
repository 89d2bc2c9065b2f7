package workload

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/tstromberg/cachesim/internal/config"
)

// zipf samples keys in [0, n) where key k has probability proportional to
// (k+1)^-s. Any finite s > 0 is accepted, including s == 1.
//
// Sampling inverts the CDF of a continuous envelope and rejects against the
// discrete mass, so each attempt consumes exactly two uniform draws.
type zipf struct {
	n uint64
	s float64
	t float64 // envelope mass
	q float64 // 1/(1-s), unused when s == 1
}

func newZipf(n uint64, s float64) (*zipf, error) {
	if n == 0 {
		return nil, fmt.Errorf("%w: zipf key space must not be empty", config.ErrInvalid)
	}
	if !(s > 0) || math.IsInf(s, 0) {
		return nil, fmt.Errorf("%w: zipf exponent must be positive, got %v", config.ErrInvalid, s)
	}

	z := &zipf{n: n, s: s}
	nf := float64(n)
	if s == 1 {
		z.t = 1 + math.Log(nf)
	} else {
		z.q = 1 / (1 - s)
		z.t = (math.Pow(nf, 1-s) - s) * z.q
	}
	return z, nil
}

func (z *zipf) invCDF(p float64) float64 {
	pt := p * z.t
	switch {
	case pt <= 1:
		return pt
	case z.s == 1:
		return math.Exp(pt - 1)
	default:
		return math.Pow(pt*(1-z.s)+z.s, z.q)
	}
}

func (z *zipf) sample(r *rand.Rand) uint64 {
	for {
		inv := z.invCDF(r.Float64())
		x := math.Floor(inv + 1)
		ratio := math.Pow(x, -z.s)
		if x > 1 {
			ratio *= math.Pow(inv, z.s)
		}
		if r.Float64() < ratio {
			return min(uint64(x)-1, z.n-1)
		}
	}
}
