package cache

// unboundedCache never evicts. It is the reference for cache-aside
// correctness checks and the upper bound on achievable hit rate.
type unboundedCache struct {
	m map[uint64]uint64
}

// NewUnbounded returns a map-backed cache; capacity is only a size hint.
// It cannot fail, so it is not a Factory itself.
func NewUnbounded(capacity int) Cache {
	return &unboundedCache{m: make(map[uint64]uint64, max(capacity, 0))}
}

func (c *unboundedCache) Get(key uint64) (uint64, bool) {
	v, ok := c.m[key]
	return v, ok
}

func (c *unboundedCache) Set(key, value uint64) {
	c.m[key] = value
}

// Len returns the number of resident keys.
func (c *unboundedCache) Len() int {
	return len(c.m)
}

func (*unboundedCache) Name() string {
	return "unbounded"
}

func (*unboundedCache) Close() {}
