package benchmark

import "time"

// Metrics observes a replay as it happens. Implementations must be cheap;
// they are called once per operation. Events are reported live, so a replay
// that is cancelled or fails leaves its earlier events recorded even though
// Runner.Run discards its counts.
type Metrics interface {
	Hit()
	Miss()
	Write()
	Delay(d time.Duration)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                {}
func (NoopMetrics) Miss()               {}
func (NoopMetrics) Write()              {}
func (NoopMetrics) Delay(time.Duration) {}
