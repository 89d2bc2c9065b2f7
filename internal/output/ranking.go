package output

import (
	"math"
	"sort"
	"time"
)

// Points awarded by placement: 1st=10, 2nd=7, 3rd=5, 4th=4, 5th=3, 6th=2, 7th=1.
var placementPoints = []float64{10, 7, 5, 4, 3, 2, 1}

// rankedEntry holds a name and score for tie detection.
type rankedEntry struct {
	name  string
	score float64
}

// Round3 rounds to 3 decimal places for tie detection.
func Round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// WinnerEntry represents a ranked entry for winner display.
type WinnerEntry struct {
	Name  string
	Score float64
}

// FormatWinners returns winner names and the first runner-up for comparison.
// If multiple entries tie for first, all are returned as winners.
// Returns (winners, runnerUp) where runnerUp is nil if everyone ties or only one entry.
func FormatWinners(entries []WinnerEntry) (winners []string, runnerUp *WinnerEntry) {
	if len(entries) == 0 {
		return nil, nil
	}

	bestScore := Round3(entries[0].Score)
	for _, e := range entries {
		if Round3(e.Score) != bestScore {
			runnerUp = &WinnerEntry{Name: e.Name, Score: e.Score}
			break
		}
		winners = append(winners, e.Name)
	}

	return winners, runnerUp
}

// rankBy sorts entries best first. Ties keep their input order.
func rankBy(entries []rankedEntry, higherIsBetter bool) []rankedEntry {
	sorted := make([]rankedEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if higherIsBetter {
			return sorted[i].score > sorted[j].score
		}
		return sorted[i].score < sorted[j].score
	})
	return sorted
}

func micros(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

// ComputeRankings calculates overall rankings from benchmark results.
//
//nolint:gocognit,revive // ranking logic necessarily complex to handle all benchmark types
func ComputeRankings(results Results) ([]Ranking, *MedalTable) {
	scores := make(map[string]float64)
	medals := make(map[string][3]int) // [gold, silver, bronze]

	categoryMedals := make(map[string]map[string][3]int)
	categoryBenchmarks := make(map[string][]BenchmarkMedal)

	// assignPoints handles tie detection: entries with scores equal to 3 decimal
	// places share the same medal position. Entries must be pre-sorted by score.
	assignPoints := func(category, benchName string, entries []rankedEntry) {
		if len(entries) == 0 {
			return
		}
		bm := BenchmarkMedal{Name: benchName}
		pos := 0 // current medal position (0=gold, 1=silver, 2=bronze)
		i := 0

		for i < len(entries) {
			var tied []string
			baseScore := Round3(entries[i].score)
			for i < len(entries) && Round3(entries[i].score) == baseScore {
				tied = append(tied, entries[i].name)
				i++
			}

			for _, n := range tied {
				if pos < len(placementPoints) {
					scores[n] += placementPoints[pos]
				} else if _, ok := scores[n]; !ok {
					scores[n] = 0
				}
				if pos < 3 {
					m := medals[n]
					m[pos]++
					medals[n] = m

					if categoryMedals[category] == nil {
						categoryMedals[category] = make(map[string][3]int)
					}
					cm := categoryMedals[category][n]
					cm[pos]++
					categoryMedals[category][n] = cm
				}
			}

			switch pos {
			case 0:
				bm.Gold = tied
			case 1:
				bm.Silver = tied
			case 2:
				bm.Bronze = tied
			}

			// Skip positions based on number of ties
			pos += len(tied)
		}

		categoryBenchmarks[category] = append(categoryBenchmarks[category], bm)
	}

	// Hit rate - higher is better
	if results.HitRate != nil {
		entries := make([]rankedEntry, len(results.HitRate.Results))
		for i, r := range results.HitRate.Results {
			entries[i] = rankedEntry{r.Name, r.Rate}
		}
		assignPoints("Hit Rate", "Cold", rankBy(entries, true))
	}
	if results.Timing != nil && len(results.Timing.Results) > 0 {
		warm := make([]rankedEntry, len(results.Timing.Results))
		mean := make([]rankedEntry, len(results.Timing.Results))
		p95 := make([]rankedEntry, len(results.Timing.Results))
		for i, r := range results.Timing.Results {
			warm[i] = rankedEntry{r.Name, r.HitRate}
			mean[i] = rankedEntry{r.Name, micros(r.Mean)}
			p95[i] = rankedEntry{r.Name, micros(r.P95)}
		}
		assignPoints("Hit Rate", "Warm", rankBy(warm, true))

		// Replay time - lower is better
		assignPoints("Replay Time", "Mean", rankBy(mean, false))
		assignPoints("Replay Time", "P95", rankBy(p95, false))
	}

	// Overhead - lower is better
	if results.Overhead != nil && len(results.Overhead.Results) > 0 {
		get := make([]rankedEntry, len(results.Overhead.Results))
		set := make([]rankedEntry, len(results.Overhead.Results))
		evict := make([]rankedEntry, len(results.Overhead.Results))
		for i, r := range results.Overhead.Results {
			get[i] = rankedEntry{r.Name, r.GetNsOp}
			set[i] = rankedEntry{r.Name, r.SetNsOp}
			evict[i] = rankedEntry{r.Name, r.SetEvictNsOp}
		}
		assignPoints("Overhead", "Get", rankBy(get, false))
		assignPoints("Overhead", "Set", rankBy(set, false))
		assignPoints("Overhead", "SetEvict", rankBy(evict, false))
	}

	// Memory - lower is better
	if results.Memory != nil && len(results.Memory.Results) > 0 {
		entries := make([]rankedEntry, len(results.Memory.Results))
		for i, r := range results.Memory.Results {
			entries[i] = rankedEntry{r.Name, float64(r.Bytes)}
		}
		assignPoints("Memory", "Heap", rankBy(entries, false))
	}

	if len(scores) == 0 {
		return nil, nil
	}

	// Sort caches by score, then by medals, then by name
	type cacheRank struct {
		name   string
		score  float64
		gold   int
		silver int
		bronze int
	}
	better := func(a, b cacheRank) bool {
		if a.score != b.score {
			return a.score > b.score
		}
		if a.gold != b.gold {
			return a.gold > b.gold
		}
		if a.silver != b.silver {
			return a.silver > b.silver
		}
		if a.bronze != b.bronze {
			return a.bronze > b.bronze
		}
		return a.name < b.name
	}

	ranks := make([]cacheRank, 0, len(scores))
	for name, score := range scores {
		m := medals[name]
		ranks = append(ranks, cacheRank{name, score, m[0], m[1], m[2]})
	}
	sort.Slice(ranks, func(i, j int) bool { return better(ranks[i], ranks[j]) })

	result := make([]Ranking, 0, len(ranks))
	for i, r := range ranks {
		result = append(result, Ranking{
			Rank:   i + 1,
			Name:   r.name,
			Score:  r.score,
			Gold:   r.gold,
			Silver: r.silver,
			Bronze: r.bronze,
		})
	}

	// Build category medal table
	catOrder := []string{"Hit Rate", "Replay Time", "Overhead", "Memory"}
	var categories []CategoryMedals
	for _, cat := range catOrder {
		bm := categoryBenchmarks[cat]
		if len(bm) == 0 {
			continue
		}

		cm := categoryMedals[cat]
		catRanks := make([]cacheRank, 0, len(cm))
		for name, m := range cm {
			catRanks = append(catRanks, cacheRank{name: name, gold: m[0], silver: m[1], bronze: m[2]})
		}
		sort.Slice(catRanks, func(i, j int) bool { return better(catRanks[i], catRanks[j]) })

		out := make([]Ranking, len(catRanks))
		for i, r := range catRanks {
			out[i] = Ranking{
				Rank:   i + 1,
				Name:   r.name,
				Gold:   r.gold,
				Silver: r.silver,
				Bronze: r.bronze,
			}
		}

		categories = append(categories, CategoryMedals{
			Name:       cat,
			Benchmarks: bm,
			Rankings:   out,
		})
	}

	return result, &MedalTable{Categories: categories}
}
