package cache

import (
	"fmt"
	"sort"
)

// registry maps cache names to their factory functions.
var registry = map[string]Factory{
	"otter":         NewOtter,
	"theine":        NewTheine,
	"ttlcache":      NewTTLCache,
	"ristretto":     NewRistretto,
	"tinylfu":       NewTinyLFU,
	"sieve":         NewSieve,
	"s3-fifo":       NewS3FIFO,
	"freelru-shard": NewFreeLRUSharded,
	"freelru-sync":  NewFreeLRUSynced,
	"freecache":     NewFreecache,
	"2q":            NewTwoQueue,
	"s4lru":         NewS4LRU,
	"clock":         NewClock,
	"lru":           NewLRU,
	"unbounded":     func(capacity int) (Cache, error) { return NewUnbounded(capacity), nil },
}

// defaultOrder defines the display order for caches. The unbounded reference
// cache is only run when selected explicitly.
var defaultOrder = []string{
	"otter", "theine", "ttlcache", "ristretto", "tinylfu", "sieve", "s3-fifo",
	"freelru-shard", "freelru-sync", "freecache", "2q", "s4lru", "clock", "lru",
}

// Filter holds the current cache filter (nil = default caches).
var Filter map[string]bool

// SetFilter sets which caches to include in benchmarks.
func SetFilter(names []string) {
	if len(names) == 0 {
		Filter = nil
		return
	}
	Filter = make(map[string]bool)
	for _, name := range names {
		Filter[name] = true
	}
}

// New returns a cache by registry name. It fails for unknown names,
// non-positive capacities, and capacities the backend cannot be built with.
func New(name string, capacity int) (Cache, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown cache %q", name)
	}
	if capacity < 1 {
		return nil, fmt.Errorf("%s: capacity must be positive, got %d", name, capacity)
	}
	c, err := f(capacity)
	if err != nil {
		return nil, fmt.Errorf("new %s: %w", name, err)
	}
	return c, nil
}

// AllNames returns the names of all (or filtered) cache implementations.
// Filtered names keep the display order; selected caches outside it follow
// alphabetically.
func AllNames() []string {
	if Filter == nil {
		return defaultOrder
	}
	var names []string
	seen := make(map[string]bool)
	for _, name := range defaultOrder {
		if Filter[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	var extra []string
	for name := range Filter {
		if _, ok := registry[name]; ok && !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// AvailableNames returns all registered cache names (ignoring filter).
func AvailableNames() []string {
	names := make([]string, 0, len(registry))
	names = append(names, defaultOrder...)
	names = append(names, "unbounded")
	return names
}

// Unknown returns the names in Filter that are not registered.
func Unknown() []string {
	var bad []string
	for name := range Filter {
		if _, ok := registry[name]; !ok {
			bad = append(bad, name)
		}
	}
	sort.Strings(bad)
	return bad
}
