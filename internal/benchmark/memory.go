package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
)

// MemoryResult holds heap usage for a cache primed with the warmup sequence.
type MemoryResult struct {
	Name          string `json:"name"`
	Items         int    `json:"items"`
	Bytes         uint64 `json:"bytes"`
	BytesPerItem  int64  `json:"bytesPerItem"`
	BaselineBytes uint64 `json:"baselineBytes"`
}

type memOutput struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
	Items int    `json:"items"`
	Bytes uint64 `json:"bytes"`
}

// RunMemory measures each named cache in its own process, so caches do not
// share a heap. It builds ./cmd/mem from the working directory, which must be
// the module root.
func RunMemory(ctx context.Context, names []string, capacity int, configPath string) ([]MemoryResult, error) {
	dir, err := os.MkdirTemp("", "cachesim-mem")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntimeInit, err)
	}
	defer os.RemoveAll(dir) //nolint:errcheck // best-effort cleanup

	binPath := filepath.Join(dir, "mem-benchmark")
	buildCmd := exec.CommandContext(ctx, "go", "build", "-o", binPath, "./cmd/mem")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%w: build mem benchmark: %w\n%s", ErrRuntimeInit, err, out)
	}

	run := func(name string) (MemoryResult, error) {
		return runMemBenchmark(ctx, binPath, name, capacity, configPath)
	}

	results := make([]MemoryResult, 0, len(names))
	for _, name := range names {
		res, err := run(name)
		if err != nil {
			fmt.Printf("  %s: error: %v\n", name, err)
			continue
		}
		results = append(results, res)
	}

	// Baseline holds the warmup sequence but no cache.
	baseline, err := run("baseline")
	if err != nil {
		return nil, fmt.Errorf("baseline benchmark: %w", err)
	}

	for i := range results {
		results[i].BaselineBytes = baseline.Bytes
		if results[i].Items > 0 {
			diff := int64(results[i].Bytes) - int64(baseline.Bytes) //nolint:gosec // safe conversion
			results[i].BytesPerItem = diff / int64(results[i].Items)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Bytes < results[j].Bytes
	})
	return results, nil
}

func runMemBenchmark(ctx context.Context, binPath, cacheName string, capacity int, configPath string) (MemoryResult, error) {
	args := []string{"-cache", cacheName, "-cap", strconv.Itoa(capacity)}
	if configPath != "" {
		args = append(args, "-config", configPath)
	}
	cmd := exec.CommandContext(ctx, binPath, args...) //nolint:gosec // trusted binary path

	out, err := cmd.CombinedOutput()
	if err != nil {
		return MemoryResult{}, fmt.Errorf("run %s: %w\n%s", cacheName, err, out)
	}

	var res memOutput
	if err := json.Unmarshal(out, &res); err != nil {
		return MemoryResult{}, fmt.Errorf("parse output for %s: %w\n%s", cacheName, err, out)
	}
	if res.Error != "" {
		return MemoryResult{}, fmt.Errorf("%s: %s", cacheName, res.Error)
	}

	return MemoryResult{
		Name:  res.Name,
		Items: res.Items,
		Bytes: res.Bytes,
	}, nil
}
