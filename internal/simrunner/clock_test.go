package simrunner

import (
	"context"
	"io"
	"log/slog"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/hcoa-iot/csmasim/internal/engine"
	simmetrics "github.com/hcoa-iot/csmasim/internal/metrics"
)

func TestWithClockOverridesDuration(t *testing.T) {
	t.Parallel()

	ticks := []float64{10.0, 10.25}
	i := 0
	fakeClock := func() float64 {
		v := ticks[i]
		i++
		return v
	}

	collector := simmetrics.NewCollector(nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := New(logger, WithMetrics(collector), withClock(fakeClock))

	req := Request{
		Config: engine.Config{
			SimDuration:   20,
			NodeCount:     2,
			DataSlots:     3,
			MaxBe:         2,
			PacketGenMode: engine.ModeRandom,
			PacketProb:    0.1,
		},
		Seed: 1,
	}

	if _, _, err := r.Run(context.Background(), req); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if i != 2 {
		t.Fatalf("fake clock called %d times, want 2", i)
	}

	m := &dto.Metric{}
	if err := collector.RunDuration.Write(m); err != nil {
		t.Fatalf("Write RunDuration: %v", err)
	}
	if got := m.GetHistogram().GetSampleSum(); got != 0.25 {
		t.Fatalf("observed run duration = %v, want 0.25 (10.25 - 10.0)", got)
	}
}
