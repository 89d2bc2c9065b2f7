package benchmark

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tstromberg/cachesim/internal/cache"
)

// OverheadResult holds the in-process cost of one cache's calls, without
// simulated latency.
type OverheadResult struct {
	Name           string  `json:"name"`
	GetNsOp        float64 `json:"getNsOp"`      // nanoseconds per Get hit
	SetNsOp        float64 `json:"setNsOp"`      // nanoseconds per Set (no eviction)
	SetEvictNsOp   float64 `json:"setEvictNsOp"` // nanoseconds per Set with eviction (20x keyspace)
	GetAllocs      int64   `json:"getAllocs"`
	SetAllocs      int64   `json:"setAllocs"`
	SetEvictAllocs int64   `json:"setEvictAllocs"`
}

// evictFactor widens the key space for the eviction benchmark.
const evictFactor = 20

// RunOverhead benchmarks single-threaded Get/Set cost for the named caches at
// the given capacity. Caches that cannot be built are left out and their
// errors joined into the returned error.
func RunOverhead(names []string, capacity int) ([]OverheadResult, error) {
	var (
		results = make([]OverheadResult, 0, len(names))
		errs    []error
	)
	for _, name := range names {
		c, err := cache.New(name, capacity)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrRuntimeInit, err))
			continue
		}
		c.Close()
		factory := func(b *testing.B) cache.Cache {
			c, err := cache.New(name, capacity)
			if err != nil {
				b.Fatal(err)
			}
			return c
		}

		getResult := testing.Benchmark(func(b *testing.B) {
			benchGet(b, factory, capacity)
		})
		setResult := testing.Benchmark(func(b *testing.B) {
			benchSet(b, factory, uint64(capacity)) //nolint:gosec // capacity validated positive
		})
		setEvictResult := testing.Benchmark(func(b *testing.B) {
			benchSet(b, factory, uint64(capacity)*evictFactor) //nolint:gosec // capacity validated positive
		})

		results = append(results, OverheadResult{
			Name:           name,
			GetNsOp:        float64(getResult.NsPerOp()),
			SetNsOp:        float64(setResult.NsPerOp()),
			SetEvictNsOp:   float64(setEvictResult.NsPerOp()),
			GetAllocs:      getResult.AllocsPerOp(),
			SetAllocs:      setResult.AllocsPerOp(),
			SetEvictAllocs: setEvictResult.AllocsPerOp(),
		})
	}
	return results, errors.Join(errs...)
}

// newCacheFunc builds a fresh cache for one benchmark run.
type newCacheFunc func(b *testing.B) cache.Cache

func benchGet(b *testing.B, factory newCacheFunc, capacity int) {
	c := factory(b)
	defer c.Close()

	keys := uint64(capacity) //nolint:gosec // capacity validated positive
	for k := range keys {
		c.Set(k, k)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		c.Get(uint64(i) % keys) //nolint:gosec // i is non-negative
	}
}

func benchSet(b *testing.B, factory newCacheFunc, keys uint64) {
	c := factory(b)
	defer c.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		k := uint64(i) % keys //nolint:gosec // i is non-negative
		c.Set(k, k)
	}
}
