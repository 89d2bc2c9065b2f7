// Package benchmark replays workloads against cache backends and measures
// hit rate, replay time, per-call overhead and memory.
package benchmark

// HitRateResult holds the outcome of one calibration replay.
type HitRateResult struct {
	Name   string  `json:"name"`
	Hits   uint64  `json:"hits"`
	Misses uint64  `json:"misses"`
	Rate   float64 `json:"rate"` // percentage
	// BelowTarget is set when Rate is under the configured minimum.
	BelowTarget bool `json:"belowTarget,omitempty"`
}

// CalculateHitRate returns hits as a percentage of all lookups, or 0 when
// there were none.
func CalculateHitRate(hits, misses uint64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}
