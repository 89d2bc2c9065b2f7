package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// hashicorp/golang-lru backs two adapters: plain LRU and 2Q, which keeps
// keys seen once in a separate recent queue so one-hit keys cannot flush
// the frequently read head of the Zipf distribution.

var (
	_ Sizer = (*lruCache)(nil)
	_ Sizer = (*twoQueueCache)(nil)
)

type lruCache struct {
	c *lru.Cache[uint64, uint64]
}

// NewLRU creates a least-recently-used cache.
func NewLRU(capacity int) (Cache, error) {
	c, err := lru.New[uint64, uint64](capacity)
	if err != nil {
		return nil, fmt.Errorf("lru: %w", err)
	}
	return &lruCache{c: c}, nil
}

func (c *lruCache) Get(key uint64) (uint64, bool) { return c.c.Get(key) }
func (c *lruCache) Set(key, value uint64)         { c.c.Add(key, value) }
func (c *lruCache) Len() int                      { return c.c.Len() }
func (*lruCache) Name() string                    { return "lru" }
func (*lruCache) Close()                          {}

type twoQueueCache struct {
	c *lru.TwoQueueCache[uint64, uint64]
}

// NewTwoQueue creates a 2Q cache. The recent queue takes a quarter of the
// capacity, so capacities below 4 are rejected.
func NewTwoQueue(capacity int) (Cache, error) {
	if err := minCapacity("2q", capacity, 4); err != nil {
		return nil, err
	}
	c, err := lru.New2Q[uint64, uint64](capacity)
	if err != nil {
		return nil, fmt.Errorf("2q: %w", err)
	}
	return &twoQueueCache{c: c}, nil
}

func (c *twoQueueCache) Get(key uint64) (uint64, bool) { return c.c.Get(key) }
func (c *twoQueueCache) Set(key, value uint64)         { c.c.Add(key, value) }
func (c *twoQueueCache) Len() int                      { return c.c.Len() }
func (*twoQueueCache) Name() string                    { return "2q" }
func (*twoQueueCache) Close()                          {}
