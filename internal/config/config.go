// Package config holds the parameters of a simulation scenario.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// ErrInvalid is wrapped by every error caused by a bad parameter value.
var ErrInvalid = errors.New("invalid configuration")

// Config describes one workload scenario. It is a plain value: copy it to
// derive variants, pass it to the constructors that need it.
type Config struct {
	// Capacity is the target size of each cache backend. It also sets the
	// warmup length (unless WarmupSize is set) and the warmup key space (2x).
	Capacity int `yaml:"capacity"`
	// TotalKeys is the exclusive upper bound of measured-workload keys.
	TotalKeys uint64 `yaml:"total_keys"`
	// WorkloadSize is the number of measured operations generated.
	WorkloadSize int `yaml:"workload_size"`
	// ZipfS is the Zipf skew exponent; must be > 0.
	ZipfS float64 `yaml:"zipf_s"`
	// ReadRatio is the probability that a generated op is a Read.
	ReadRatio float64 `yaml:"read_ratio"`

	// Simulated backend latency bounds, in microseconds (inclusive).
	MinDelayUS uint64 `yaml:"min_delay_us"`
	MaxDelayUS uint64 `yaml:"max_delay_us"`

	// WarmupSize is the number of warmup iterations; 0 means Capacity.
	WarmupSize   int    `yaml:"warmup_size"`
	WarmupSeed   uint64 `yaml:"warmup_seed"`
	WorkloadSeed uint64 `yaml:"workload_seed"`

	// MinHitRate is the advisory hit-rate target, in percent.
	MinHitRate float64 `yaml:"min_hit_rate"`

	// Samples is the number of timed replays per backend.
	Samples int `yaml:"samples"`
	// Parallel is how many backends are measured at once.
	Parallel int `yaml:"parallel"`
}

// Default returns the baseline scenario.
func Default() Config {
	return Config{
		Capacity:     7500,
		TotalKeys:    10_000,
		WorkloadSize: 1_000,
		ZipfS:        1.6,
		ReadRatio:    0.95,
		MinDelayUS:   1000,
		MaxDelayUS:   2000,
		WarmupSeed:   123,
		WorkloadSeed: 42,
		MinHitRate:   85.0,
		Samples:      20,
		Parallel:     1,
	}
}

// WarmupOps returns the number of warmup iterations.
func (c Config) WarmupOps() int {
	if c.WarmupSize > 0 {
		return c.WarmupSize
	}
	return c.Capacity
}

// WarmupKeySpace returns the key space sampled during warmup. It is wider
// than the cache so priming causes evictions.
func (c Config) WarmupKeySpace() uint64 {
	return 2 * uint64(max(c.Capacity, 0)) //nolint:gosec // clamped above
}

// MaxDelayLimitUS is the largest delay bound, in microseconds, that still fits
// in a time.Duration.
const MaxDelayLimitUS = uint64(math.MaxInt64 / int64(time.Microsecond))

// ValidateLatency checks the simulated delay bounds alone.
func (c Config) ValidateLatency() error {
	switch {
	case c.MinDelayUS > c.MaxDelayUS:
		return fmt.Errorf("%w: min_delay_us (%d) exceeds max_delay_us (%d)", ErrInvalid, c.MinDelayUS, c.MaxDelayUS)
	case c.MaxDelayUS > MaxDelayLimitUS:
		return fmt.Errorf("%w: max_delay_us must be at most %d, got %d", ErrInvalid, MaxDelayLimitUS, c.MaxDelayUS)
	}
	return nil
}

// Validate reports the first invalid parameter.
func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalid, c.Capacity)
	case c.TotalKeys == 0:
		return fmt.Errorf("%w: total_keys must be positive", ErrInvalid)
	case c.WorkloadSize <= 0:
		return fmt.Errorf("%w: workload_size must be positive, got %d", ErrInvalid, c.WorkloadSize)
	case !(c.ZipfS > 0) || math.IsInf(c.ZipfS, 0):
		return fmt.Errorf("%w: zipf_s must be a positive number, got %v", ErrInvalid, c.ZipfS)
	case !(c.ReadRatio >= 0 && c.ReadRatio <= 1):
		return fmt.Errorf("%w: read_ratio must be within [0, 1], got %v", ErrInvalid, c.ReadRatio)
	case c.WarmupSize < 0:
		return fmt.Errorf("%w: warmup_size must not be negative, got %d", ErrInvalid, c.WarmupSize)
	case c.MinHitRate < 0 || c.MinHitRate > 100:
		return fmt.Errorf("%w: min_hit_rate must be within [0, 100], got %v", ErrInvalid, c.MinHitRate)
	case c.Samples <= 0:
		return fmt.Errorf("%w: samples must be positive, got %d", ErrInvalid, c.Samples)
	case c.Parallel <= 0:
		return fmt.Errorf("%w: parallel must be positive, got %d", ErrInvalid, c.Parallel)
	}
	return c.ValidateLatency()
}

// Parse decodes YAML on top of the defaults. Unknown fields are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a YAML scenario file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
