package benchmark

import (
	"context"
	"math/rand/v2"
	"time"
)

// Sleeper suspends a replay to simulate a backend round trip. It returns the
// context's error if ctx is done first.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f(ctx, d).
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerSleeper waits on a timer and yields the goroutine while waiting.
var TimerSleeper Sleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
})

// NoSleep returns immediately, still honouring cancellation. Useful when only
// hit rates matter.
var NoSleep Sleeper = SleeperFunc(func(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
})

// latency draws whole-microsecond delays uniformly from [lo, hi].
type latency struct {
	lo   uint64
	span uint64
	rng  *rand.Rand
}

func newLatency(loUS, hiUS, seed uint64) *latency {
	return &latency{
		lo:   loUS,
		span: hiUS - loUS + 1,
		rng:  rand.New(rand.NewPCG(seed, seed+1)), //nolint:gosec // simulation, not security
	}
}

func (l *latency) next() time.Duration {
	us := l.lo
	if l.span > 1 {
		us += l.rng.Uint64N(l.span)
	}
	return time.Duration(us) * time.Microsecond //nolint:gosec // bounded by config
}
