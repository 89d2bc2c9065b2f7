// Package main measures memory usage for a single cache implementation.
// Run in isolated process for accurate measurements.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/tstromberg/cachesim/internal/cache"
	"github.com/tstromberg/cachesim/internal/config"
	"github.com/tstromberg/cachesim/internal/workload"
)

var keepAlive any

type result struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
	Items int    `json:"items"`
	Bytes uint64 `json:"bytes"`
}

func main() {
	cacheName := flag.String("cache", "", "cache implementation to measure, or \"baseline\"")
	capacity := flag.Int("cap", 0, "capacity (default: from config)")
	configPath := flag.String("config", "", "YAML scenario file")
	flag.Parse()

	res, err := measure(*cacheName, *capacity, *configPath)
	if err != nil {
		res = result{Name: *cacheName, Error: err.Error()}
	}
	if err := json.NewEncoder(os.Stdout).Encode(res); err != nil {
		os.Exit(1)
	}
}

func measure(name string, capacity int, configPath string) (result, error) {
	if name == "" {
		return result{}, fmt.Errorf("cache name required")
	}
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return result{}, err
		}
	}
	if capacity > 0 {
		cfg.Capacity = capacity
	}

	ops, err := workload.NewWarmupManager(cfg).GenerateOps()
	if err != nil {
		return result{}, err
	}

	runtime.GC()
	debug.FreeOSMemory()

	items := 0
	if name == "baseline" {
		keepAlive = ops
	} else {
		c, err := cache.New(name, cfg.Capacity)
		if err != nil {
			return result{}, err
		}
		if err := workload.NewWarmupManager(cfg).Warm(c, ops); err != nil {
			return result{}, err
		}
		items = resident(c, cfg.WarmupKeySpace())
		keepAlive = []any{c, ops}
	}

	runtime.GC()
	time.Sleep(100 * time.Millisecond)
	runtime.GC()
	debug.FreeOSMemory()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return result{Name: name, Items: items, Bytes: mem.Alloc}, nil
}

// resident reports the cache's own entry count, or for caches without one
// reads every warmup key, including the related keys inserted by warmup reads.
func resident(c cache.Cache, keySpace uint64) int {
	if n, ok := cache.Occupancy(c); ok {
		return n
	}
	n := 0
	for k := range keySpace + 1000 {
		if _, ok := c.Get(k); ok {
			n++
		}
	}
	return n
}
