package cache

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/coocood/freecache"
)

// freecacheEntrySize is the per-entry estimate used to size the byte budget:
// 8 byte key, 8 byte value and ~24 bytes of header.
const freecacheEntrySize = 40

// freecacheCache is byte-addressed and reports failures, so it implements
// Fallible. Get and Set swallow errors for callers that use the plain contract.
type freecacheCache struct {
	c *freecache.Cache
}

// NewFreecache creates a freecache sized for capacity integer entries.
func NewFreecache(capacity int) (Cache, error) {
	if err := minCapacity("freecache", capacity, 1); err != nil {
		return nil, err
	}
	cacheBytes := max(capacity*freecacheEntrySize,
		// minimum 512KB
		512*1024)
	return &freecacheCache{c: freecache.NewCache(cacheBytes)}, nil
}

func (c *freecacheCache) TryGet(key uint64) (uint64, bool, error) {
	v, err := c.c.GetInt(int64(key)) //nolint:gosec // keys are reinterpreted, not converted
	if errors.Is(err, freecache.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if len(v) != 8 {
		return 0, false, fmt.Errorf("corrupt value of %d bytes", len(v))
	}
	return binary.LittleEndian.Uint64(v), true, nil
}

func (c *freecacheCache) TrySet(key, value uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], value)
	return c.c.SetInt(int64(key), b[:], 0) //nolint:gosec // keys are reinterpreted, not converted
}

func (c *freecacheCache) Get(key uint64) (uint64, bool) {
	v, ok, _ := c.TryGet(key) //nolint:errcheck // plain contract reports errors as misses
	return v, ok
}

func (c *freecacheCache) Set(key, value uint64) {
	c.TrySet(key, value) //nolint:errcheck,gosec // best-effort set
}

func (c *freecacheCache) Len() int {
	return int(c.c.EntryCount())
}

func (*freecacheCache) Name() string {
	return "freecache"
}

func (*freecacheCache) Close() {}
