// cachesim replays a reproducible synthetic workload against Go cache
// implementations sitting in front of a simulated slow backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tstromberg/cachesim/internal/benchmark"
	"github.com/tstromberg/cachesim/internal/cache"
	"github.com/tstromberg/cachesim/internal/config"
	"github.com/tstromberg/cachesim/internal/metrics/prom"
	"github.com/tstromberg/cachesim/internal/output"
	"github.com/tstromberg/cachesim/internal/trace"
	"github.com/tstromberg/cachesim/internal/workload"
)

// validSuites lists all available benchmark suites.
var validSuites = []string{"calibrate", "timing", "overhead", "memory"}

// defaultSuites skips memory, which compiles a helper binary.
const defaultSuites = "calibrate,timing,overhead"

// suiteFilter holds which suites to run.
var suiteFilter map[string]bool

func main() {
	showHelp := flag.Bool("help", false, "Show help message")
	configPath := flag.String("config", "", "YAML scenario file (default: built-in scenario)")
	suites := flag.String("suites", defaultSuites, "Comma-separated list of suites: calibrate,timing,overhead,memory, or all")
	caches := flag.String("caches", "", "Comma-separated list of caches to benchmark (default: all)")
	samples := flag.Int("samples", 0, "Timed replays per cache (default: from config)")
	parallel := flag.Int("parallel", 0, "Caches measured concurrently (default: from config)")
	seed := flag.Uint64("seed", 0, "Workload seed (default: from config)")
	noDelay := flag.Bool("no-delay", false, "Skip simulated backend latency")
	latencySeed := flag.Uint64("latency-seed", 0, "Seed simulated latency for reproducible delays")
	record := flag.String("record", "", "Write the replayed workload to a trace file (.zst compresses)")
	replay := flag.String("replay", "", "Replay a recorded trace instead of generating a workload")
	outDir := flag.String("outdir", "", "Output directory for results (writes html, md and json)")
	htmlOut := flag.String("html", "", "Output results to HTML file (e.g., results.html)")
	openHTML := flag.Bool("open", false, "Open HTML report in web browser after generation")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address (e.g., :9090)")
	verbose := flag.Bool("v", false, "Verbose (debug) logging")
	flag.Parse()

	if *showHelp {
		printUsage()
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Load and override configuration
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	if *samples > 0 {
		cfg.Samples = *samples
	}
	if *parallel > 0 {
		cfg.Parallel = *parallel
	}
	if set["seed"] {
		cfg.WorkloadSeed = *seed
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Parse suites
	suiteFilter = make(map[string]bool)
	for s := range strings.SplitSeq(*suites, ",") {
		s = strings.TrimSpace(strings.ToLower(s))
		switch {
		case s == "":
		case s == "all":
			for _, v := range validSuites {
				suiteFilter[v] = true
			}
		case !contains(validSuites, s):
			fmt.Fprintf(os.Stderr, "error: unknown suite %q (available: %s)\n", s, strings.Join(validSuites, ", "))
			os.Exit(1)
		default:
			suiteFilter[s] = true
		}
	}

	// Apply cache filter
	if *caches != "" {
		var names []string
		for name := range strings.SplitSeq(*caches, ",") {
			names = append(names, strings.TrimSpace(name))
		}
		cache.SetFilter(names)
		if bad := cache.Unknown(); len(bad) > 0 {
			fmt.Fprintf(os.Stderr, "error: unknown cache(s) %s\n\nAvailable caches:\n", strings.Join(bad, ", "))
			for _, name := range cache.AvailableNames() {
				fmt.Fprintf(os.Stderr, "  %s\n", name)
			}
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ops, source, err := loadWorkload(cfg, *replay)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *record != "" {
		if err := recordWorkload(*record, ops); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		log.Info("recorded workload", "path", *record, "ops", len(ops))
	}

	var opts []benchmark.Option
	if *noDelay {
		opts = append(opts, benchmark.WithSleeper(benchmark.NoSleep))
	}
	if set["latency-seed"] {
		opts = append(opts, benchmark.WithLatencySeed(*latencySeed))
	}

	suite, err := benchmark.NewSuite(cfg, ops, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	suite.Options = opts

	if *metricsAddr != "" {
		adapter, err := prom.New(prometheus.DefaultRegisterer, "cachesim", "replay")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		suite.Metrics = adapter.ForCache
		srv := serveMetrics(*metricsAddr, log)
		defer srv.Close() //nolint:errcheck // shutting down
	}

	results := output.Results{
		Scenario: output.ScenarioInfo{
			Config:   cfg,
			Workload: trace.Summary(ops),
			Source:   source,
			NoDelay:  *noDelay,
		},
	}

	printHeader(cfg, results.Scenario)

	if suiteFilter["calibrate"] {
		results.HitRate = runCalibration(ctx, suite, cfg)
	}
	if suiteFilter["timing"] {
		results.Timing = runTiming(ctx, suite, cfg)
	}
	if suiteFilter["overhead"] {
		results.Overhead = runOverhead(cfg)
	}
	if suiteFilter["memory"] {
		results.Memory = runMemory(ctx, cfg, *configPath)
	}
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "interrupted")
		os.Exit(1)
	}

	results.Rankings, results.MedalTable = output.ComputeRankings(results)
	printOverallRanking(results.Rankings)

	commandLine := "cachesim " + strings.Join(os.Args[1:], " ")
	results.MachineInfo = output.MachineInfo{
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		NumCPU:      runtime.NumCPU(),
		GoVersion:   runtime.Version(),
		CommandLine: commandLine,
	}

	// Determine output paths
	var htmlPath, mdPath, jsonPath string
	if *outDir != "" { //nolint:gocritic // ifElseChain: clearer than switch for exclusive conditions
		if err := os.MkdirAll(*outDir, 0o755); err != nil { //nolint:gosec // G301: 0755 is standard dir permission
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			os.Exit(1)
		}
		htmlPath = filepath.Join(*outDir, "cachesim_results.html")
		mdPath = filepath.Join(*outDir, "cachesim_results.md")
		jsonPath = filepath.Join(*outDir, "cachesim_results.json")
	} else if *htmlOut != "" {
		htmlPath = *htmlOut
	} else {
		htmlPath = filepath.Join(os.TempDir(), "cachesim_results.html")
	}

	if err := output.WriteHTML(htmlPath, results, commandLine); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing HTML: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Results: %s\n", htmlPath)

	if mdPath != "" {
		if err := output.WriteMarkdown(mdPath, results, commandLine); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing Markdown: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("         %s\n", mdPath)
	}

	if jsonPath != "" {
		if err := output.WriteJSON(jsonPath, results, commandLine); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("         %s\n", jsonPath)
	}

	if *openHTML {
		if err := openBrowser(htmlPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not open browser: %v\n", err)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// loadWorkload replays a trace when path is set, and generates the seeded
// workload otherwise.
func loadWorkload(cfg config.Config, path string) ([]workload.Op, string, error) {
	if path != "" {
		ops, err := trace.Load(path)
		if err != nil {
			return nil, "", err
		}
		if len(ops) == 0 {
			return nil, "", fmt.Errorf("%w: trace %s has no operations", config.ErrInvalid, path)
		}
		return ops, path, nil
	}
	ops, err := workload.NewGenerator(cfg.WorkloadSeed, cfg).Generate()
	if err != nil {
		return nil, "", err
	}
	return ops, fmt.Sprintf("generated, seed %d", cfg.WorkloadSeed), nil
}

func recordWorkload(path string, ops []workload.Op) error {
	if strings.HasSuffix(path, ".zst") {
		return trace.Save(path, ops)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := trace.Write(f, ops); err != nil {
		f.Close() //nolint:errcheck,gosec // already failing
		return err
	}
	return f.Close()
}

func serveMetrics(addr string, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	log.Info("serving metrics", "addr", addr)
	return srv
}

func printUsage() {
	fmt.Println("cachesim - Replay a skewed synthetic workload against Go caches")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cachesim                           Run calibrate, timing and overhead suites (default)")
	fmt.Println("  cachesim -suites calibrate         Only measure hit rates")
	fmt.Println("  cachesim -config scenario.yaml     Use a YAML scenario")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -config <file>      YAML scenario (capacity, total_keys, zipf_s, read_ratio, ...)")
	fmt.Println("  -suites <list>      Comma-separated suites: calibrate,timing,overhead,memory or all")
	fmt.Println("  -caches <list>      Comma-separated caches to benchmark (default: all)")
	fmt.Println("  -samples <n>        Timed replays per cache")
	fmt.Println("  -parallel <n>       Caches measured concurrently")
	fmt.Println("  -seed <n>           Workload seed")
	fmt.Println("  -no-delay           Skip simulated backend latency")
	fmt.Println("  -latency-seed <n>   Make simulated delays reproducible")
	fmt.Println("  -record <file>      Save the workload as a trace (.zst compresses)")
	fmt.Println("  -replay <file>      Replay a saved trace")
	fmt.Println("  -outdir <dir>       Output directory for cachesim_results.{html,md,json}")
	fmt.Println("  -html <file>        Output results to HTML file (default: temp dir)")
	fmt.Println("  -open               Open HTML report in web browser after generation")
	fmt.Println("  -metrics <addr>     Serve Prometheus metrics while running")
	fmt.Println("  -v                  Debug logging")
	fmt.Println()
	fmt.Println("Suites:")
	fmt.Println("  calibrate   one replay per cache on a cold instance; hit rate vs target")
	fmt.Println("  timing      warmed, timed replays with simulated backend latency")
	fmt.Println("  overhead    in-process Get/Set cost (ns/op, allocs)")
	fmt.Println("  memory      heap after warmup (isolated processes)")
	fmt.Println()
	fmt.Println("Available caches:")
	for _, name := range cache.AvailableNames() {
		fmt.Printf("  - %s\n", name)
	}
}

const lineWidth = 80

func printHeader(cfg config.Config, sc output.ScenarioInfo) {
	fmt.Println("cachesim")
	fmt.Println()

	var suitesRun []string
	for _, s := range validSuites {
		if suiteFilter[s] {
			suitesRun = append(suitesRun, s)
		}
	}

	fmt.Printf("  caches:   %d\n", len(cache.AllNames()))
	fmt.Printf("  suites:   %s\n", strings.Join(suitesRun, ", "))
	fmt.Printf("  workload: %s (%s)\n", sc.Workload, sc.Source)
	fmt.Printf("  capacity: %d, zipf s=%g, read ratio=%g\n", cfg.Capacity, cfg.ZipfS, cfg.ReadRatio)
	if sc.NoDelay {
		fmt.Println("  delay:    off")
	} else {
		fmt.Printf("  delay:    %d-%d us\n", cfg.MinDelayUS, cfg.MaxDelayUS)
	}
	fmt.Println()
}

func printSuite(name, description string) {
	header := fmt.Sprintf("%s: %s ", name, description)
	padding := max(lineWidth-len(header), 4)
	fmt.Printf("%s%s\n\n", header, strings.Repeat("─", padding))
}

func printErr(err error) {
	if err == nil {
		return
	}
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Printf("  error: %s\n", line)
	}
	fmt.Println()
}

func runCalibration(ctx context.Context, suite *benchmark.Suite, cfg config.Config) *output.HitRateData {
	printSuite("calibrate", "hit rate on a cold cache")

	results, err := suite.Calibrate(ctx)
	printErr(err)
	if len(results) == 0 {
		return nil
	}

	sorted := make([]benchmark.HitRateResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rate > sorted[j].Rate
	})

	fmt.Println("  | Cache         |   Hits | Misses | Hit rate |")
	fmt.Println("  |---------------|--------|--------|----------|")
	var low []string
	for _, r := range sorted {
		mark := ""
		if r.BelowTarget {
			mark = " !"
			low = append(low, r.Name)
		}
		fmt.Printf("  | %-13s | %6d | %6d | %7.2f%% |%s\n", r.Name, r.Hits, r.Misses, r.Rate, mark)
	}
	if len(sorted) >= 2 {
		best, second := sorted[0], sorted[1]
		fmt.Printf("\n  winner: %s (%.2f%%, %s has %.2f%%)\n", best.Name, best.Rate, second.Name, second.Rate)
	}
	if len(low) > 0 {
		fmt.Printf("\n  warning: below the %.2f%% target: %s\n", cfg.MinHitRate, strings.Join(low, ", "))
	}
	fmt.Println()

	return &output.HitRateData{Results: results, Target: cfg.MinHitRate}
}

func runTiming(ctx context.Context, suite *benchmark.Suite, cfg config.Config) *output.TimingData {
	printSuite("timing", fmt.Sprintf("%d warmed replays per cache", cfg.Samples))

	results, err := suite.Run(ctx)
	printErr(err)
	if len(results) == 0 {
		return nil
	}

	sorted := make([]benchmark.TimingResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Mean < sorted[j].Mean
	})

	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	fmt.Println("  | Cache         |  Mean ms |   P50 ms |   P95 ms |   Min ms |   Max ms |    Ops/s | Hit rate |")
	fmt.Println("  |---------------|----------|----------|----------|----------|----------|----------|----------|")
	for _, r := range sorted {
		fmt.Printf("  | %-13s | %8.2f | %8.2f | %8.2f | %8.2f | %8.2f | %8.0f | %7.2f%% |\n",
			r.Name, ms(r.Mean), ms(r.P50), ms(r.P95), ms(r.Min), ms(r.Max), r.OpsPerSec, r.HitRate)
	}
	if len(sorted) >= 2 {
		best, second := sorted[0], sorted[1]
		pct := (ms(second.Mean) - ms(best.Mean)) / ms(best.Mean) * 100
		fmt.Printf("\n  winner: %s (%.2f ms mean, %s is %.1f%% slower)\n", best.Name, ms(best.Mean), second.Name, pct)
	}
	fmt.Println()

	return &output.TimingData{Results: results, Samples: cfg.Samples}
}

func runOverhead(cfg config.Config) *output.OverheadData {
	printSuite("overhead", fmt.Sprintf("single-threaded call cost, capacity %d", cfg.Capacity))

	results, err := benchmark.RunOverhead(cache.AllNames(), cfg.Capacity)
	printErr(err)
	if len(results) == 0 {
		return nil
	}

	avg := func(r benchmark.OverheadResult) float64 {
		return (r.GetNsOp + r.SetNsOp) / 2
	}

	sorted := make([]benchmark.OverheadResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return avg(sorted[i]) < avg(sorted[j])
	})

	fmt.Println("  | Cache         | Get ns | Get alloc | Set ns | Set alloc | SetEvict ns | SetEvict alloc | Avg ns |")
	fmt.Println("  |---------------|--------|-----------|--------|-----------|-------------|----------------|--------|")

	for _, r := range sorted {
		fmt.Printf("  | %-13s | %6.0f | %9d | %6.0f | %9d | %11.0f | %14d | %6.0f |\n",
			r.Name, r.GetNsOp, r.GetAllocs, r.SetNsOp, r.SetAllocs, r.SetEvictNsOp, r.SetEvictAllocs, avg(r))
	}

	if len(sorted) >= 2 {
		best := sorted[0]
		second := sorted[1]
		pct := (avg(second) - avg(best)) / avg(best) * 100
		fmt.Printf("\n  winner: %s (%.0f ns avg, %s is %.1f%% slower)\n", best.Name, avg(best), second.Name, pct)
	}
	fmt.Println()

	return &output.OverheadData{Results: results, Capacity: cfg.Capacity}
}

func runMemory(ctx context.Context, cfg config.Config, configPath string) *output.MemoryData {
	printSuite("memory", "heap after warmup (isolated processes)")

	results, err := benchmark.RunMemory(ctx, cache.AllNames(), cfg.Capacity, configPath)
	if err != nil {
		printErr(err)
		return nil
	}

	fmt.Println("  | Cache         | Items Stored | Memory (MB) | Overhead (bytes/item) |")
	fmt.Println("  |---------------|--------------|-------------|-----------------------|")

	for _, r := range results {
		mb := float64(r.Bytes) / 1024 / 1024
		fmt.Printf("  | %-13s | %12d | %11.2f | %21d |\n",
			r.Name, r.Items, mb, r.BytesPerItem)
	}

	if len(results) >= 2 {
		best := results[0]
		second := results[1]
		savings := float64(second.Bytes-best.Bytes) / float64(second.Bytes) * 100
		fmt.Printf("\n  winner: %s (%.1f%% less memory vs %s)\n", best.Name, savings, second.Name)
	}
	fmt.Println()

	return &output.MemoryData{Results: results, Capacity: cfg.Capacity}
}

func printOverallRanking(rankings []output.Ranking) {
	if len(rankings) == 0 {
		return
	}

	printSuite("summary", "ranked voting across all tests")

	for i := 0; i < len(rankings) && i < 3; i++ {
		r := rankings[i]
		fmt.Printf("  #%d  %s (%.0f points)\n", r.Rank, r.Name, r.Score)
	}
	fmt.Println()
}

// openBrowser opens the specified path in the default web browser.
func openBrowser(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path) //nolint:noctx // trusted command, fire-and-forget
	case "linux":
		cmd = exec.Command("xdg-open", path) //nolint:noctx // trusted command, fire-and-forget
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", path) //nolint:noctx // trusted command, fire-and-forget
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
