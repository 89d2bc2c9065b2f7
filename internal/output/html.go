// Package output provides result formatting and export.
package output

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/tstromberg/cachesim/internal/benchmark"
	"github.com/tstromberg/cachesim/internal/config"
)

//go:embed template.html
var templateFS embed.FS

// Results holds all benchmark results for report output.
type Results struct {
	Timestamp   string        `json:"timestamp"`
	Scenario    ScenarioInfo  `json:"scenario"`
	HitRate     *HitRateData  `json:"hitRate,omitempty"`
	Timing      *TimingData   `json:"timing,omitempty"`
	Overhead    *OverheadData `json:"overhead,omitempty"`
	Memory      *MemoryData   `json:"memory,omitempty"`
	Rankings    []Ranking     `json:"rankings,omitempty"`
	MedalTable  *MedalTable   `json:"medalTable,omitempty"`
	MachineInfo MachineInfo   `json:"machineInfo"`
}

// ScenarioInfo records what was replayed.
type ScenarioInfo struct {
	Config   config.Config `json:"config"`
	Workload string        `json:"workload"` // one-line summary of the op sequence
	Source   string        `json:"source"`   // "generated" or a trace path
	NoDelay  bool          `json:"noDelay,omitempty"`
}

// MachineInfo holds information about the benchmark environment.
type MachineInfo struct {
	OS          string `json:"os"`
	Arch        string `json:"arch"`
	NumCPU      int    `json:"numCPU"`
	GoVersion   string `json:"goVersion"`
	CommandLine string `json:"commandLine"`
}

// Ranking represents an overall ranking entry.
type Ranking struct {
	Rank   int     `json:"rank"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Gold   int     `json:"gold"`
	Silver int     `json:"silver"`
	Bronze int     `json:"bronze"`
}

// BenchmarkMedal represents a single benchmark's top 3 placements. Tied
// entries share a placement.
type BenchmarkMedal struct {
	Name   string   `json:"name"`
	Gold   []string `json:"gold"`
	Silver []string `json:"silver,omitempty"`
	Bronze []string `json:"bronze,omitempty"`
}

// CategoryMedals holds medals for a benchmark category with its winner.
type CategoryMedals struct {
	Name       string           `json:"name"`
	Benchmarks []BenchmarkMedal `json:"benchmarks"`
	Rankings   []Ranking        `json:"rankings"`
}

// MedalTable holds all benchmark medals organized by category.
type MedalTable struct {
	Categories []CategoryMedals `json:"categories"`
}

// HitRateData holds calibration results.
type HitRateData struct {
	Results []benchmark.HitRateResult `json:"results"`
	Target  float64                   `json:"target"`
}

// TimingData holds timed replay results.
type TimingData struct {
	Results []benchmark.TimingResult `json:"results"`
	Samples int                      `json:"samples"`
}

// OverheadData holds per-call cost results.
type OverheadData struct {
	Results  []benchmark.OverheadResult `json:"results"`
	Capacity int                        `json:"capacity"`
}

// MemoryData holds memory benchmark data.
type MemoryData struct {
	Results  []benchmark.MemoryResult `json:"results"`
	Capacity int                      `json:"capacity"`
}

// WriteHTML writes benchmark results to an HTML file.
func WriteHTML(filename string, results Results, commandLine string) error {
	results.Timestamp = time.Now().Format("2006-01-02 15:04:05 MST")
	results.MachineInfo.CommandLine = commandLine

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // best effort

	return htmlTemplate.Execute(f, results)
}

var htmlTemplate = template.Must(template.New("template.html").Funcs(templateFuncs).ParseFS(templateFS, "template.html"))

var templateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sortByHitRate": func(results []benchmark.HitRateResult) []benchmark.HitRateResult {
		sorted := make([]benchmark.HitRateResult, len(results))
		copy(sorted, results)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Rate > sorted[j].Rate
		})
		return sorted
	},
	"sortByMean": func(results []benchmark.TimingResult) []benchmark.TimingResult {
		sorted := make([]benchmark.TimingResult, len(results))
		copy(sorted, results)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Mean < sorted[j].Mean
		})
		return sorted
	},
	"sortByGet": func(results []benchmark.OverheadResult) []benchmark.OverheadResult {
		sorted := make([]benchmark.OverheadResult, len(results))
		copy(sorted, results)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].GetNsOp < sorted[j].GetNsOp
		})
		return sorted
	},
	"hitRateChart": func(results []benchmark.HitRateResult) template.JS {
		fallback := []string{"#388E3C", "#1E88E5", "#E53935", "#8E24AA", "#FB8C00"}
		labels := make([]string, len(results))
		data := make([]string, len(results))
		colors := make([]string, len(results))
		for i, r := range results {
			color, ok := cacheColors[r.Name]
			if !ok {
				color = fallback[i%len(fallback)]
			}
			labels[i] = fmt.Sprintf("%q", r.Name)
			data[i] = fmt.Sprintf("%.2f", r.Rate)
			colors[i] = fmt.Sprintf("%q", color)
		}
		return template.JS(fmt.Sprintf(`{labels:[%s],datasets:[{label:"hit rate %%",data:[%s],backgroundColor:[%s]}]}`, //nolint:gosec // names come from the registry
			strings.Join(labels, ","), strings.Join(data, ","), strings.Join(colors, ",")))
	},
	"allocColor": func(n int64) template.CSS {
		switch {
		case n == 0:
			return "background:#fff;color:#333"
		case n == 1:
			return "background:#fff3cd;color:#333"
		case n == 2:
			return "background:#ffcc80;color:#333"
		case n == 3:
			return "background:#ef5350;color:#fff"
		default:
			return "background:#8b0000;color:#fff"
		}
	},
	"pct": func(f float64) string { return fmt.Sprintf("%.2f", f) },
	"ns":  func(f float64) string { return fmt.Sprintf("%.1f", f) },
	"ms": func(d time.Duration) string {
		return fmt.Sprintf("%.2f", float64(d)/float64(time.Millisecond))
	},
	"qps": func(f float64) string {
		if f >= 1_000_000 {
			return fmt.Sprintf("%.2fM", f/1_000_000)
		}
		return fmt.Sprintf("%.1fK", f/1_000)
	},
	"mb": func(b uint64) string {
		return fmt.Sprintf("%.2f", float64(b)/1024/1024)
	},
	"names": func(names []string) string { return strings.Join(names, ", ") },
}

var cacheColors = map[string]string{
	"otter":         "#1976D2",
	"theine":        "#D32F2F",
	"ristretto":     "#7B1FA2",
	"freecache":     "#F57C00",
	"freelru-shard": "#0288D1",
	"freelru-sync":  "#00796B",
	"tinylfu":       "#C2185B",
	"sieve":         "#5D4037",
	"s3-fifo":       "#455A64",
	"2q":            "#E64A19",
	"s4lru":         "#512DA8",
	"clock":         "#00695C",
	"lru":           "#AFB42B",
	"ttlcache":      "#0097A7",
	"unbounded":     "#9E9E9E",
}
