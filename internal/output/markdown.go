package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/tstromberg/cachesim/internal/benchmark"
)

// WriteMarkdown writes benchmark results to a Markdown file.
func WriteMarkdown(filename string, results Results, commandLine string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // best effort

	return RenderMarkdown(f, results, commandLine)
}

// RenderMarkdown writes the Markdown report to out.
func RenderMarkdown(out io.Writer, results Results, commandLine string) error {
	var werr error
	w := func(format string, args ...any) {
		if werr == nil {
			_, werr = fmt.Fprintf(out, format, args...)
		}
	}

	cfg := results.Scenario.Config
	w("# cachesim Results\n\n")
	w("```\n")
	w("Command: %s\n", commandLine)
	w("Environment: %s/%s, %d CPUs, %s\n", results.MachineInfo.OS, results.MachineInfo.Arch, results.MachineInfo.NumCPU, results.MachineInfo.GoVersion)
	w("Workload: %s (%s)\n", results.Scenario.Workload, results.Scenario.Source)
	w("Scenario: capacity=%d keys=%d zipf_s=%g read_ratio=%g", cfg.Capacity, cfg.TotalKeys, cfg.ZipfS, cfg.ReadRatio)
	if results.Scenario.NoDelay {
		w(" delay=off\n")
	} else {
		w(" delay=%d-%dus\n", cfg.MinDelayUS, cfg.MaxDelayUS)
	}
	w("```\n\n")

	if results.HitRate != nil {
		w("## Hit Rate (cold)\n\n")
		writeHitRateMarkdown(w, results.HitRate)
	}
	if results.Timing != nil {
		w("## Replay Time\n\n")
		writeTimingMarkdown(w, results.Timing.Results)
	}
	if results.Overhead != nil {
		w("## Overhead\n\n")
		writeOverheadMarkdown(w, results.Overhead.Results)
	}
	if results.Memory != nil && len(results.Memory.Results) > 0 {
		w("## Memory\n\n")
		writeMemoryMarkdown(w, results.Memory.Results)
	}

	if len(results.Rankings) > 0 {
		w("## Overall Rankings\n\n")
		w("| Rank | Cache         | Score | Gold | Silver | Bronze |\n")
		w("|------|---------------|-------|------|--------|--------|\n")
		for _, r := range results.Rankings {
			w("| %4d | %-13s | %5.0f | %4d | %6d | %6d |\n", r.Rank, r.Name, r.Score, r.Gold, r.Silver, r.Bronze)
		}
		w("\n")
	}

	return werr
}

// winnerLine prints the leaders of pre-sorted entries and their margin over
// the runner-up.
func winnerLine(w func(string, ...any), entries []WinnerEntry, higherIsBetter bool) {
	winners, runnerUp := FormatWinners(entries)
	if runnerUp == nil {
		return
	}
	best := entries[0].Score
	var pct float64
	if higherIsBetter {
		pct = (best - runnerUp.Score) / runnerUp.Score * 100
	} else {
		pct = (runnerUp.Score - best) / best * 100
	}
	w("\n  winner: %s (+%.1f%% vs %s)\n", strings.Join(winners, ", "), pct, runnerUp.Name)
}

func writeHitRateMarkdown(w func(string, ...any), data *HitRateData) {
	if len(data.Results) == 0 {
		return
	}

	w("| Cache         |   Hits | Misses | Hit rate |\n")
	w("|---------------|--------|--------|----------|\n")

	sorted := make([]benchmark.HitRateResult, len(data.Results))
	copy(sorted, data.Results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rate > sorted[j].Rate
	})

	entries := make([]WinnerEntry, len(sorted))
	for i, r := range sorted {
		mark := ""
		if r.BelowTarget {
			mark = " !"
		}
		w("| %-13s | %6d | %6d | %6.2f%%%s |\n", r.Name, r.Hits, r.Misses, r.Rate, mark)
		entries[i] = WinnerEntry{Name: r.Name, Score: r.Rate}
	}
	winnerLine(w, entries, true)
	w("\n  target: %.2f%% (! = below)\n\n", data.Target)
}

func writeTimingMarkdown(w func(string, ...any), data []benchmark.TimingResult) {
	if len(data) == 0 {
		return
	}

	w("| Cache         |  Mean ms |   P50 ms |   P95 ms |    Ops/s | Hit rate |\n")
	w("|---------------|----------|----------|----------|----------|----------|\n")

	sorted := make([]benchmark.TimingResult, len(data))
	copy(sorted, data)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Mean < sorted[j].Mean
	})

	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	entries := make([]WinnerEntry, len(sorted))
	for i, r := range sorted {
		w("| %-13s | %8.2f | %8.2f | %8.2f | %8.0f | %7.2f%% |\n",
			r.Name, ms(r.Mean), ms(r.P50), ms(r.P95), r.OpsPerSec, r.HitRate)
		entries[i] = WinnerEntry{Name: r.Name, Score: ms(r.Mean)}
	}
	winnerLine(w, entries, false)
	w("\n")
}

func writeOverheadMarkdown(w func(string, ...any), data []benchmark.OverheadResult) {
	if len(data) == 0 {
		return
	}

	w("| Cache         | Get ns | Get alloc | Set ns | Set alloc | SetEvict ns | SetEvict alloc | Avg ns |\n")
	w("|---------------|--------|-----------|--------|-----------|-------------|----------------|--------|\n")

	sorted := make([]benchmark.OverheadResult, len(data))
	copy(sorted, data)
	sort.SliceStable(sorted, func(i, j int) bool {
		return (sorted[i].GetNsOp + sorted[i].SetNsOp) < (sorted[j].GetNsOp + sorted[j].SetNsOp)
	})

	entries := make([]WinnerEntry, len(sorted))
	for i, r := range sorted {
		avg := (r.GetNsOp + r.SetNsOp) / 2
		w("| %-13s | %6.0f | %9d | %6.0f | %9d | %11.0f | %14d | %6.0f |\n",
			r.Name, r.GetNsOp, r.GetAllocs, r.SetNsOp, r.SetAllocs, r.SetEvictNsOp, r.SetEvictAllocs, avg)
		entries[i] = WinnerEntry{Name: r.Name, Score: avg}
	}
	winnerLine(w, entries, false)
	w("\n")
}

func writeMemoryMarkdown(w func(string, ...any), data []benchmark.MemoryResult) {
	w("| Cache         | Items Stored | Memory (MB) | Overhead (bytes/item) |\n")
	w("|---------------|--------------|-------------|-----------------------|\n")

	entries := make([]WinnerEntry, len(data))
	for i, r := range data {
		mb := float64(r.Bytes) / 1024 / 1024
		w("| %-13s | %12d | %11.2f | %21d |\n", r.Name, r.Items, mb, r.BytesPerItem)
		entries[i] = WinnerEntry{Name: r.Name, Score: mb}
	}
	winnerLine(w, entries, false)
	w("\n")
}
