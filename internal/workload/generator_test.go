package workload

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/tstromberg/cachesim/internal/config"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := config.Default()
	a, err := NewGenerator(42, cfg).Generate()
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewGenerator(42, cfg).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a, b) {
		t.Error("same seed produced different sequences")
	}

	c, err := NewGenerator(43, cfg).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if slices.Equal(a, c) {
		t.Error("different seeds produced identical sequences")
	}
}

func TestGenerateShape(t *testing.T) {
	tests := []struct {
		name  string
		keys  uint64
		size  int
		s     float64
		reads float64
	}{
		{"default", 10_000, 1000, 1.6, 0.95},
		{"uniform-ish", 50, 2000, 0.3, 0.5},
		{"harmonic", 100, 500, 1.0, 0.9},
		{"single key", 1, 100, 2, 0.5},
		{"write only", 100, 300, 1.2, 0},
		{"read only", 100, 300, 1.2, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.TotalKeys = tc.keys
			cfg.WorkloadSize = tc.size
			cfg.ZipfS = tc.s
			cfg.ReadRatio = tc.reads

			ops, err := NewGenerator(1, cfg).Generate()
			if err != nil {
				t.Fatal(err)
			}
			if len(ops) != tc.size {
				t.Fatalf("len(ops) = %d, want %d", len(ops), tc.size)
			}
			for i, op := range ops {
				if op.Key >= tc.keys {
					t.Fatalf("ops[%d].Key = %d, want < %d", i, op.Key, tc.keys)
				}
				if op.Kind == Read && op.Value != 0 {
					t.Fatalf("ops[%d] is a read with value %d", i, op.Value)
				}
				if op.Value > math.MaxUint32 {
					t.Fatalf("ops[%d].Value = %d, want a 32-bit value", i, op.Value)
				}
			}
			reads := CountReads(ops)
			switch tc.reads {
			case 0:
				if reads != 0 {
					t.Errorf("reads = %d, want 0", reads)
				}
			case 1:
				if reads != tc.size {
					t.Errorf("reads = %d, want %d", reads, tc.size)
				}
			}
		})
	}
}

func TestGenerateReadMix(t *testing.T) {
	cfg := config.Default()
	cfg.WorkloadSize = 20_000
	ops, err := NewGenerator(42, cfg).Generate()
	if err != nil {
		t.Fatal(err)
	}
	frac := float64(CountReads(ops)) / float64(len(ops))
	if math.Abs(frac-0.95) > 0.01 {
		t.Errorf("read fraction = %.4f, want about 0.95", frac)
	}
}

func TestGenerateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero exponent", func(c *config.Config) { c.ZipfS = 0 }},
		{"negative exponent", func(c *config.Config) { c.ZipfS = -0.5 }},
		{"NaN exponent", func(c *config.Config) { c.ZipfS = math.NaN() }},
		{"empty key space", func(c *config.Config) { c.TotalKeys = 0 }},
		{"zero size", func(c *config.Config) { c.WorkloadSize = 0 }},
		{"bad read ratio", func(c *config.Config) { c.ReadRatio = 2 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			ops, err := NewGenerator(42, cfg).Generate()
			if !errors.Is(err, config.ErrInvalid) {
				t.Errorf("Generate() error = %v, want ErrInvalid", err)
			}
			if ops != nil {
				t.Errorf("Generate() returned %d ops alongside an error", len(ops))
			}
		})
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{ReadOp(5), "GET,5"},
		{WriteOp(7, 123), "SET,7,123"},
		{Op{Kind: Kind(9), Key: 1}, "Kind(9),1"},
	}
	for _, tc := range tests {
		if got := tc.op.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
