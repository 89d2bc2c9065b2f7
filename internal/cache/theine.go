package cache

import (
	"fmt"

	"github.com/Yiling-J/theine-go"
)

type theineCache struct {
	c *theine.Cache[uint64, uint64]
}

// NewTheine creates a W-TinyLFU cache where every entry costs 1.
func NewTheine(capacity int) (Cache, error) {
	c, err := theine.NewBuilder[uint64, uint64](int64(capacity)).Build()
	if err != nil {
		return nil, fmt.Errorf("theine: %w", err)
	}
	return &theineCache{c: c}, nil
}

func (c *theineCache) Get(key uint64) (uint64, bool) {
	return c.c.Get(key)
}

func (c *theineCache) Set(key, value uint64) {
	c.c.Set(key, value, 1)
}

func (c *theineCache) Len() int {
	return c.c.Len()
}

func (c *theineCache) Name() string {
	return "theine"
}

func (c *theineCache) Close() {
	c.c.Close()
}
