package cache

import (
	"fmt"

	"github.com/dgraph-io/ristretto"
)

type ristrettoCache struct {
	c *ristretto.Cache
}

// NewRistretto creates a Ristretto cache. Sets are buffered and applied
// asynchronously, so a Get right after a Set may still miss.
func NewRistretto(capacity int) (Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        int64(capacity) * 10,
		MaxCost:            int64(capacity),
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("ristretto: %w", err)
	}
	return &ristrettoCache{c: c}, nil
}

func (c *ristrettoCache) Get(key uint64) (uint64, bool) {
	v, ok := c.c.Get(key)
	if !ok {
		return 0, false
	}
	return v.(uint64), true //nolint:errcheck,revive // type is known from Set
}

func (c *ristrettoCache) Set(key, value uint64) {
	c.c.Set(key, value, 1)
}

func (*ristrettoCache) Name() string {
	return "ristretto"
}

func (c *ristrettoCache) Close() {
	c.c.Wait() // flush pending async writes
	c.c.Close()
}
