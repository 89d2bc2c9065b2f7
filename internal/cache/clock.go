package cache

import (
	"github.com/Code-Hex/go-generics-cache/policy/clock"
)

type clockCache struct {
	c *clock.Cache[uint64, uint64]
}

// NewClock creates a clock-based cache.
func NewClock(capacity int) (Cache, error) {
	if err := minCapacity("clock", capacity, 1); err != nil {
		return nil, err
	}
	return &clockCache{
		c: clock.NewCache[uint64, uint64](clock.WithCapacity(capacity)),
	}, nil
}

func (c *clockCache) Get(key uint64) (uint64, bool) {
	return c.c.Get(key)
}

func (c *clockCache) Set(key, value uint64) {
	c.c.Set(key, value)
}

func (*clockCache) Name() string {
	return "clock"
}

func (*clockCache) Close() {}
