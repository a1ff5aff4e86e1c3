// Package simmetrics exposes Prometheus instrumentation for simulation
// runs served by csmasimd.
package simmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hcoa-iot/csmasim/internal/engine"
)

// -------------------------------------------------------------------------
// Prometheus Metric Constants
// -------------------------------------------------------------------------

const (
	namespace = "csmasim"
	subsystem = "run"
)

// Label names.
const (
	labelOutcome    = "outcome"
	labelCacheEvent = "result"
)

// -------------------------------------------------------------------------
// Collector — Prometheus Simulation Metrics
// -------------------------------------------------------------------------

// Collector holds all simulation-run Prometheus metrics.
//
//   - RunsTotal counts completed engine invocations.
//   - RunDuration tracks wall-clock time spent inside engine.Simulate.
//   - LastChannelUtilization gauges the four channel-bin fractions of the
//     most recently completed run.
//   - OutcomesTotal counts packet outcomes (success-1st/2nd/3rd, failure)
//     accumulated across every run this process has served.
//   - CacheEvents counts result-cache hits and misses.
type Collector struct {
	// RunsTotal counts completed simulation runs.
	RunsTotal prometheus.Counter

	// RunDuration observes the wall-clock seconds spent in engine.Simulate.
	RunDuration prometheus.Histogram

	// LastChannelUtilization gauges channel-bin occupancy (0..1) for the
	// most recently completed run, labeled by bin name.
	LastChannelUtilization *prometheus.GaugeVec

	// OutcomesTotal counts packet outcomes across all runs, labeled by
	// outcome: success_1st, success_2nd, success_3rd, failure.
	OutcomesTotal *prometheus.CounterVec

	// CacheEvents counts result-cache lookups, labeled "hit" or "miss".
	CacheEvents *prometheus.CounterVec
}

// NewCollector creates a Collector with all simulation metrics registered
// against reg. If reg is nil, a private registry is created so that
// callers who don't care about scraping (tests, one-off CLI runs) never
// collide with another Collector instance's metric names.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	c := newMetrics()

	reg.MustRegister(
		c.RunsTotal,
		c.RunDuration,
		c.LastChannelUtilization,
		c.OutcomesTotal,
		c.CacheEvents,
	)

	return c
}

// newMetrics creates all Prometheus metric vectors without registering them.
func newMetrics() *Collector {
	return &Collector{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "total",
			Help:      "Total simulation runs completed by this process.",
		}),

		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duration_seconds",
			Help:      "Wall-clock time spent executing engine.Simulate.",
			Buckets:   prometheus.DefBuckets,
		}),

		LastChannelUtilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "channel_fraction",
			Help:      "Fraction of ticks spent in each channel bin for the most recent run.",
		}, []string{"bin"}),

		OutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outcomes_total",
			Help:      "Total packet outcomes across all runs served by this process.",
		}, []string{labelOutcome}),

		CacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_events_total",
			Help:      "Result cache lookups, labeled hit or miss.",
		}, []string{labelCacheEvent}),
	}
}

// -------------------------------------------------------------------------
// Recording
// -------------------------------------------------------------------------

// ObserveRun records one completed simulation: the run counter, the
// duration histogram, per-bin channel utilization gauges, and the
// outcome counters.
func (c *Collector) ObserveRun(result engine.Result, seconds float64) {
	c.RunsTotal.Inc()
	c.RunDuration.Observe(seconds)

	if result.Duration > 0 {
		d := float64(result.Duration)
		c.LastChannelUtilization.WithLabelValues("idle").Set(float64(result.Stats.ChannelIdleTicks) / d)
		c.LastChannelUtilization.WithLabelValues("tx").Set(float64(result.Stats.ChannelTxTicks) / d)
		c.LastChannelUtilization.WithLabelValues("collision").Set(float64(result.Stats.ChannelCollisionTicks) / d)
		c.LastChannelUtilization.WithLabelValues("backoff").Set(float64(result.Stats.ChannelBackoffTicks) / d)
	}

	c.OutcomesTotal.WithLabelValues("success_1st").Add(float64(result.Stats.Success1st))
	c.OutcomesTotal.WithLabelValues("success_2nd").Add(float64(result.Stats.Success2nd))
	c.OutcomesTotal.WithLabelValues("success_3rd").Add(float64(result.Stats.Success3rd))
	c.OutcomesTotal.WithLabelValues("failure").Add(float64(result.Stats.FailureCount))
}

// RecordCacheHit increments the cache hit counter.
func (c *Collector) RecordCacheHit() {
	c.CacheEvents.WithLabelValues("hit").Inc()
}

// RecordCacheMiss increments the cache miss counter.
func (c *Collector) RecordCacheMiss() {
	c.CacheEvents.WithLabelValues("miss").Inc()
}
