package cache

import (
	"strconv"

	"github.com/dgryski/go-s4lru"
	"github.com/vmihailenco/go-tinylfu"
)

// s4lru and tinylfu only take string keys, so workload keys are formatted
// in decimal and values are stored boxed.

func keyString(k uint64) string {
	return strconv.FormatUint(k, 10)
}

func unbox(v any, ok bool) (uint64, bool) {
	if !ok {
		return 0, false
	}
	return v.(uint64), true //nolint:errcheck,revive // only uint64 values are stored
}

type s4lruCache struct {
	c *s4lru.Cache
}

// NewS4LRU creates a four-segment LRU cache. The segments are equal, so the
// capacity is rounded up to a multiple of 4.
func NewS4LRU(capacity int) (Cache, error) {
	if err := minCapacity("s4lru", capacity, 1); err != nil {
		return nil, err
	}
	return &s4lruCache{c: s4lru.New((capacity + 3) &^ 3)}, nil
}

func (c *s4lruCache) Get(key uint64) (uint64, bool) {
	return unbox(c.c.Get(keyString(key)))
}

func (c *s4lruCache) Set(key, value uint64) {
	c.c.Set(keyString(key), value)
}

func (*s4lruCache) Name() string {
	return "s4lru"
}

func (*s4lruCache) Close() {}

type tinyLFUCache struct {
	c *tinylfu.SyncT
}

// NewTinyLFU creates a TinyLFU cache whose frequency sketch samples ten
// times the capacity. Its protected segment is empty below capacity 3.
func NewTinyLFU(capacity int) (Cache, error) {
	if err := minCapacity("tinylfu", capacity, 3); err != nil {
		return nil, err
	}
	return &tinyLFUCache{c: tinylfu.NewSync(capacity, capacity*10)}, nil
}

func (c *tinyLFUCache) Get(key uint64) (uint64, bool) {
	return unbox(c.c.Get(keyString(key)))
}

func (c *tinyLFUCache) Set(key, value uint64) {
	c.c.Set(&tinylfu.Item{Key: keyString(key), Value: value})
}

func (*tinyLFUCache) Name() string {
	return "tinylfu"
}

func (*tinyLFUCache) Close() {}
