package simmetrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/hcoa-iot/csmasim/internal/engine"
	simmetrics "github.com/hcoa-iot/csmasim/internal/metrics"
)

func sampleResult() engine.Result {
	return engine.Result{
		Duration: 100,
		Stats: engine.Stats{
			ChannelIdleTicks:      60,
			ChannelTxTicks:        30,
			ChannelCollisionTicks: 5,
			ChannelBackoffTicks:   5,
			Success1st:            3,
			Success2nd:            1,
			Success3rd:            0,
			FailureCount:          1,
		},
	}
}

func TestNewCollector(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := simmetrics.NewCollector(reg)

	if c.RunsTotal == nil {
		t.Error("RunsTotal is nil")
	}
	if c.RunDuration == nil {
		t.Error("RunDuration is nil")
	}
	if c.LastChannelUtilization == nil {
		t.Error("LastChannelUtilization is nil")
	}
	if c.OutcomesTotal == nil {
		t.Error("OutcomesTotal is nil")
	}
	if c.CacheEvents == nil {
		t.Error("CacheEvents is nil")
	}

	if _, err := reg.Gather(); err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
}

func TestObserveRun(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := simmetrics.NewCollector(reg)

	c.ObserveRun(sampleResult(), 0.25)

	if v := counterValue(t, prometheus.Collector(c.RunsTotal)); v != 1 {
		t.Errorf("RunsTotal = %v, want 1", v)
	}

	if v := gaugeVecValue(t, c.LastChannelUtilization, "idle"); v != 0.6 {
		t.Errorf("idle fraction = %v, want 0.6", v)
	}
	if v := gaugeVecValue(t, c.LastChannelUtilization, "tx"); v != 0.3 {
		t.Errorf("tx fraction = %v, want 0.3", v)
	}
	if v := gaugeVecValue(t, c.LastChannelUtilization, "collision"); v != 0.05 {
		t.Errorf("collision fraction = %v, want 0.05", v)
	}

	if v := counterVecValue(t, c.OutcomesTotal, "success_1st"); v != 3 {
		t.Errorf("success_1st = %v, want 3", v)
	}
	if v := counterVecValue(t, c.OutcomesTotal, "success_2nd"); v != 1 {
		t.Errorf("success_2nd = %v, want 1", v)
	}
	if v := counterVecValue(t, c.OutcomesTotal, "failure"); v != 1 {
		t.Errorf("failure = %v, want 1", v)
	}

	// A second run accumulates outcomes rather than resetting them.
	c.ObserveRun(sampleResult(), 0.1)
	if v := counterVecValue(t, c.OutcomesTotal, "success_1st"); v != 6 {
		t.Errorf("success_1st after second run = %v, want 6", v)
	}
}

func TestObserveRunSkipsUtilizationForZeroDuration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := simmetrics.NewCollector(reg)

	c.ObserveRun(engine.Result{}, 0)

	if v := counterValue(t, prometheus.Collector(c.RunsTotal)); v != 1 {
		t.Errorf("RunsTotal = %v, want 1", v)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "csmasim_run_channel_fraction" {
			t.Errorf("channel_fraction has %d series after a zero-duration run, want 0", len(mf.GetMetric()))
		}
	}
}

func TestCacheEvents(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := simmetrics.NewCollector(reg)

	c.RecordCacheHit()
	c.RecordCacheHit()
	c.RecordCacheMiss()

	if v := counterVecValue(t, c.CacheEvents, "hit"); v != 2 {
		t.Errorf("cache hits = %v, want 2", v)
	}
	if v := counterVecValue(t, c.CacheEvents, "miss"); v != 1 {
		t.Errorf("cache misses = %v, want 1", v)
	}
}

// -------------------------------------------------------------------------
// Helpers
// -------------------------------------------------------------------------

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()

	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	close(ch)

	m := &dto.Metric{}
	for metric := range ch {
		if err := metric.Write(m); err != nil {
			t.Fatalf("Write metric: %v", err)
		}
	}

	return m.GetCounter().GetValue()
}

func gaugeVecValue(t *testing.T, vec *prometheus.GaugeVec, labels ...string) float64 {
	t.Helper()

	gauge, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues(%v): %v", labels, err)
	}

	m := &dto.Metric{}
	if err := gauge.Write(m); err != nil {
		t.Fatalf("Write metric: %v", err)
	}

	return m.GetGauge().GetValue()
}

func counterVecValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()

	counter, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues(%v): %v", labels, err)
	}

	m := &dto.Metric{}
	if err := counter.Write(m); err != nil {
		t.Fatalf("Write metric: %v", err)
	}

	return m.GetCounter().GetValue()
}
