package simrunner

import (
	"fmt"

	"github.com/hcoa-iot/csmasim/internal/config"
	"github.com/hcoa-iot/csmasim/internal/engine"
)

// EngineConfig converts the daemon's default engine configuration section
// into an engine.Config. It lives here, rather than in internal/config,
// to keep internal/config free of an engine dependency — config is loaded
// before anything else and should not need to know engine internals.
func EngineConfig(ec config.EngineConfig) (engine.Config, error) {
	mode, err := ParsePacketGenMode(ec.PacketGenMode)
	if err != nil {
		return engine.Config{}, fmt.Errorf("convert engine config: %w", err)
	}

	return engine.Config{
		SimDuration:      ec.SimDuration,
		NodeCount:        ec.NodeCount,
		DataSlots:        ec.DataSlots,
		CollisionPenalty: ec.CollisionPenalty,
		Pe:               ec.Pe,
		MinBe:            ec.MinBe,
		MaxBe:            ec.MaxBe,
		MaxNb:            ec.MaxNb,
		PacketGenMode:    mode,
		PacketProb:       ec.PacketProb,
		PacketInterval:   ec.PacketInterval,
		SlotDurationUs:   ec.SlotDurationUs,
	}, nil
}
