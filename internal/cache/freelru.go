package cache

import (
	"encoding/binary"
	"fmt"
	"math"

	lru "github.com/elastic/go-freelru"
	"github.com/zeebo/xxh3"
)

// hashKey spreads integer keys across freelru's buckets and shards.
func hashKey(k uint64) uint32 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], k)
	return uint32(xxh3.Hash(b[:]))
}

// freeLRUCapacity converts capacity to freelru's uint32 entry count.
func freeLRUCapacity(name string, capacity int) (uint32, error) {
	if err := minCapacity(name, capacity, 1); err != nil {
		return 0, err
	}
	if uint64(capacity) > math.MaxUint32 {
		return 0, fmt.Errorf("%s capacity %d exceeds %d", name, capacity, uint32(math.MaxUint32))
	}
	return uint32(capacity), nil
}

type freeLRUSyncedCache struct {
	c *lru.SyncedLRU[uint64, uint64]
}

// NewFreeLRUSynced creates a single freelru guarded by one mutex.
func NewFreeLRUSynced(capacity int) (Cache, error) {
	n, err := freeLRUCapacity("freelru-sync", capacity)
	if err != nil {
		return nil, err
	}
	c, err := lru.NewSynced[uint64, uint64](n, hashKey)
	if err != nil {
		return nil, fmt.Errorf("freelru-sync: %w", err)
	}
	return &freeLRUSyncedCache{c: c}, nil
}

func (c *freeLRUSyncedCache) Get(key uint64) (uint64, bool) {
	return c.c.Get(key)
}

func (c *freeLRUSyncedCache) Set(key, value uint64) {
	c.c.Add(key, value)
}

func (c *freeLRUSyncedCache) Len() int {
	return c.c.Len()
}

func (c *freeLRUSyncedCache) Name() string {
	return "freelru-sync"
}

func (c *freeLRUSyncedCache) Close() {}

type freeLRUShardedCache struct {
	c *lru.ShardedLRU[uint64, uint64]
}

// NewFreeLRUSharded creates a freelru split into shards by key hash, each
// shard evicting on its own.
func NewFreeLRUSharded(capacity int) (Cache, error) {
	n, err := freeLRUCapacity("freelru-shard", capacity)
	if err != nil {
		return nil, err
	}
	c, err := lru.NewSharded[uint64, uint64](n, hashKey)
	if err != nil {
		return nil, fmt.Errorf("freelru-shard: %w", err)
	}
	return &freeLRUShardedCache{c: c}, nil
}

func (c *freeLRUShardedCache) Get(key uint64) (uint64, bool) {
	return c.c.Get(key)
}

func (c *freeLRUShardedCache) Set(key, value uint64) {
	c.c.Add(key, value)
}

func (c *freeLRUShardedCache) Len() int {
	return c.c.Len()
}

func (c *freeLRUShardedCache) Name() string {
	return "freelru-shard"
}

func (c *freeLRUShardedCache) Close() {}
