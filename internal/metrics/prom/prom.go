// Package prom exports replay metrics to Prometheus.
package prom

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tstromberg/cachesim/internal/benchmark"
)

// Adapter owns the metric vectors shared by every cache. Safe for concurrent
// use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
	writes *prometheus.CounterVec
	delay  *prometheus.HistogramVec
}

// New registers the replay metrics with reg (nil => prometheus.DefaultRegisterer)
// under namespace ns and subsystem sub. Registration conflicts are reported
// as benchmark.ErrRuntimeInit.
func New(reg prometheus.Registerer, ns, sub string) (*Adapter, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := []string{"cache"}
	a := &Adapter{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: sub,
			Name:      "hits_total",
			Help:      "Replayed reads served from the cache",
		}, labels),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: sub,
			Name:      "misses_total",
			Help:      "Replayed reads filled from the simulated backend",
		}, labels),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: sub,
			Name:      "writes_total",
			Help:      "Replayed writes",
		}, labels),
		delay: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: sub,
			Name:      "simulated_delay_seconds",
			Help:      "Simulated backend latency per miss or write",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}, labels),
	}
	for _, c := range []prometheus.Collector{a.hits, a.misses, a.writes, a.delay} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("%w: register metrics: %w", benchmark.ErrRuntimeInit, err)
		}
	}
	return a, nil
}

// ForCache returns the metrics of one cache, labelled with its name.
func (a *Adapter) ForCache(name string) benchmark.Metrics {
	return &cacheMetrics{
		hits:   a.hits.WithLabelValues(name),
		misses: a.misses.WithLabelValues(name),
		writes: a.writes.WithLabelValues(name),
		delay:  a.delay.WithLabelValues(name),
	}
}

type cacheMetrics struct {
	hits, misses, writes prometheus.Counter
	delay                prometheus.Observer
}

func (m *cacheMetrics) Hit()   { m.hits.Inc() }
func (m *cacheMetrics) Miss()  { m.misses.Inc() }
func (m *cacheMetrics) Write() { m.writes.Inc() }

func (m *cacheMetrics) Delay(d time.Duration) { m.delay.Observe(d.Seconds()) }

var _ benchmark.Metrics = (*cacheMetrics)(nil)
