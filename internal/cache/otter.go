package cache

import (
	"fmt"

	"github.com/maypok86/otter/v2"
)

type otterCache struct {
	c *otter.Cache[uint64, uint64]
}

// NewOtter creates an Otter cache.
func NewOtter(capacity int) (Cache, error) {
	c, err := otter.New(&otter.Options[uint64, uint64]{MaximumSize: capacity})
	if err != nil {
		return nil, fmt.Errorf("otter: %w", err)
	}
	return &otterCache{c: c}, nil
}

func (c *otterCache) Get(key uint64) (uint64, bool) {
	return c.c.GetIfPresent(key)
}

func (c *otterCache) Set(key, value uint64) {
	c.c.Set(key, value)
}

// Len is otter's size estimate; it lags behind writes still in its buffers.
func (c *otterCache) Len() int {
	return c.c.EstimatedSize()
}

func (*otterCache) Name() string {
	return "otter"
}

func (*otterCache) Close() {}
