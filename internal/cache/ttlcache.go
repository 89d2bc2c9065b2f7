package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type ttlcacheCache struct {
	c *ttlcache.Cache[uint64, uint64]
}

// NewTTLCache creates a TTL-based cache. ttlcache reads capacity 0 as
// unlimited, so it is rejected.
func NewTTLCache(capacity int) (Cache, error) {
	if err := minCapacity("ttlcache", capacity, 1); err != nil {
		return nil, err
	}
	c := ttlcache.New[uint64, uint64](
		ttlcache.WithCapacity[uint64, uint64](uint64(capacity)), //nolint:gosec // capacity always positive
		ttlcache.WithTTL[uint64, uint64](time.Hour),             // outlives any replay; eviction is by capacity only
	)
	go c.Start()
	return &ttlcacheCache{c: c}, nil
}

func (c *ttlcacheCache) Get(key uint64) (uint64, bool) {
	item := c.c.Get(key)
	if item == nil {
		return 0, false
	}
	return item.Value(), true
}

func (c *ttlcacheCache) Set(key, value uint64) {
	c.c.Set(key, value, ttlcache.DefaultTTL)
}

func (c *ttlcacheCache) Len() int {
	return c.c.Len()
}

func (*ttlcacheCache) Name() string {
	return "ttlcache"
}

func (c *ttlcacheCache) Close() {
	c.c.Stop()
}
