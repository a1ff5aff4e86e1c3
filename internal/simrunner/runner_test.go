package simrunner_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-test/deep"

	"github.com/hcoa-iot/csmasim/internal/config"
	"github.com/hcoa-iot/csmasim/internal/engine"
	"github.com/hcoa-iot/csmasim/internal/simrunner"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunWithoutCacheIsDeterministic(t *testing.T) {
	t.Parallel()

	r := simrunner.New(testLogger())

	req := simrunner.Request{
		Config: engine.Config{
			SimDuration:   50,
			NodeCount:     2,
			DataSlots:     4,
			MaxBe:         2,
			PacketGenMode: engine.ModeRandom,
			PacketProb:    0.1,
		},
		Seed: 99,
	}

	r1, hit1, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if hit1 {
		t.Fatal("first run reported a cache hit with no cache configured")
	}

	r2, hit2, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if hit2 {
		t.Fatal("second run reported a cache hit with no cache configured")
	}

	if diff := deep.Equal(r1, r2); diff != nil {
		t.Fatalf("two uncached runs with the same request diverged: %v", diff)
	}
}

func TestParsePacketGenMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    engine.PacketGenMode
		wantErr bool
	}{
		{input: "Random", want: engine.ModeRandom},
		{input: "Interval", want: engine.ModeInterval},
		{input: "Poisson", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := simrunner.ParsePacketGenMode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePacketGenMode(%q) = nil error, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePacketGenMode(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePacketGenMode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEngineConfigConversion(t *testing.T) {
	t.Parallel()

	ec := config.EngineConfig{
		SimDuration:      100,
		NodeCount:        3,
		DataSlots:        5,
		CollisionPenalty: 10,
		Pe:               1,
		MinBe:            0,
		MaxBe:            3,
		MaxNb:            4,
		PacketGenMode:    "Interval",
		PacketInterval:   20,
	}

	cfg, err := simrunner.EngineConfig(ec)
	if err != nil {
		t.Fatalf("EngineConfig() error: %v", err)
	}

	if cfg.PacketGenMode != engine.ModeInterval {
		t.Errorf("PacketGenMode = %v, want ModeInterval", cfg.PacketGenMode)
	}
	if cfg.SimDuration != 100 || cfg.NodeCount != 3 || cfg.DataSlots != 5 {
		t.Errorf("unexpected conversion: %+v", cfg)
	}
}

func TestEngineConfigConversionRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	_, err := simrunner.EngineConfig(config.EngineConfig{PacketGenMode: "Bogus"})
	if err == nil {
		t.Fatal("EngineConfig() with an unrecognized mode returned nil error")
	}
}
