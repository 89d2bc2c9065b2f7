// Package cache provides a unified interface for benchmarking cache implementations.
package cache

import (
	"errors"
	"fmt"
)

// ErrOperation is wrapped by errors returned from a failing cache call.
var ErrOperation = errors.New("cache operation failed")

// Cache is the minimal adapter contract every backend satisfies.
// Implementations are driven by one goroutine at a time.
type Cache interface {
	// Get returns the cached value for key, applying the backend's own
	// bookkeeping (recency, frequency) as a side effect.
	Get(key uint64) (uint64, bool)
	// Set upserts key; the backend evicts according to its policy.
	Set(key, value uint64)
	// Name is a static label for reports.
	Name() string
	// Close releases background resources.
	Close()
}

// Fallible is implemented by caches whose calls can fail, such as backends
// that perform I/O or reject entries.
type Fallible interface {
	Cache
	TryGet(key uint64) (uint64, bool, error)
	TrySet(key, value uint64) error
}

// Sizer is implemented by caches that can report how many entries they
// currently hold.
type Sizer interface {
	Len() int
}

// Occupancy returns the resident entry count of c, if its backend exposes one.
// Counts from backends that apply writes asynchronously are estimates.
func Occupancy(c Cache) (int, bool) {
	s, ok := c.(Sizer)
	if !ok {
		return 0, false
	}
	return s.Len(), true
}

// Factory creates a new cache instance with the given capacity. It fails when
// the backend cannot be built at that capacity.
type Factory func(capacity int) (Cache, error)

// minCapacity rejects capacities below the smallest one a backend supports.
func minCapacity(name string, capacity, least int) error {
	if capacity < least {
		return fmt.Errorf("%s needs capacity >= %d, got %d", name, least, capacity)
	}
	return nil
}

// Lookup calls Get, or TryGet when c is Fallible.
func Lookup(c Cache, key uint64) (uint64, bool, error) {
	f, ok := c.(Fallible)
	if !ok {
		v, found := c.Get(key)
		return v, found, nil
	}
	v, found, err := f.TryGet(key)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s get %d: %w", ErrOperation, c.Name(), key, err)
	}
	return v, found, nil
}

// Store calls Set, or TrySet when c is Fallible.
func Store(c Cache, key, value uint64) error {
	f, ok := c.(Fallible)
	if !ok {
		c.Set(key, value)
		return nil
	}
	if err := f.TrySet(key, value); err != nil {
		return fmt.Errorf("%w: %s set %d: %w", ErrOperation, c.Name(), key, err)
	}
	return nil
}
