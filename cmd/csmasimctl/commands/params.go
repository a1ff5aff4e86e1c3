package commands

import (
	"github.com/spf13/cobra"

	"github.com/hcoa-iot/csmasim/internal/engine"
	"github.com/hcoa-iot/csmasim/internal/simrunner"
)

// engineParams mirrors engine.Config field-for-field as CLI flag targets.
type engineParams struct {
	simDuration      int
	nodeCount        int
	dataSlots        int
	collisionPenalty int
	pe               int
	minBe            int
	maxBe            int
	maxNb            int
	packetGenMode    string
	packetProb       float64
	packetInterval   int
	slotDurationUs   int
	seed             uint64
}

// registerEngineFlags attaches the simulation parameter flags shared by the
// run and simulate subcommands, defaulting to the 802.15.4-style values used
// throughout the worked examples.
func registerEngineFlags(cmd *cobra.Command, p *engineParams) {
	flags := cmd.Flags()
	flags.IntVar(&p.simDuration, "sim-duration", 1000, "total number of ticks to simulate")
	flags.IntVar(&p.nodeCount, "node-count", 5, "number of nodes in the collision domain")
	flags.IntVar(&p.dataSlots, "data-slots", 10, "payload length in ticks")
	flags.IntVar(&p.collisionPenalty, "collision-penalty", 40, "NAV duration on hearing any preamble")
	flags.IntVar(&p.pe, "pe", 2, "fixed priority/preamble slots added to every backoff draw")
	flags.IntVar(&p.minBe, "min-be", 0, "minimum backoff exponent")
	flags.IntVar(&p.maxBe, "max-be", 4, "maximum backoff exponent")
	flags.IntVar(&p.maxNb, "max-nb", 4, "maximum number of retries before a packet is dropped")
	flags.StringVar(&p.packetGenMode, "packet-gen-mode", "Random", "packet generation mode: Random or Interval")
	flags.Float64Var(&p.packetProb, "packet-prob", 0.01, "per-tick packet arrival probability (ModeRandom)")
	flags.IntVar(&p.packetInterval, "packet-interval", 50, "packet arrival period in ticks (ModeInterval)")
	flags.IntVar(&p.slotDurationUs, "slot-duration-us", 320, "display-only slot duration in microseconds")
	flags.Uint64Var(&p.seed, "seed", 1, "PRNG seed")
}

// toEngineConfig parses the CLI-supplied parameters into an engine.Config.
// Only the packet generation mode is checked: an unrecognized value fails
// with simrunner.ErrInvalidPacketGenMode. The numeric fields are copied
// unchecked.
func (p *engineParams) toEngineConfig() (engine.Config, error) {
	mode, err := simrunner.ParsePacketGenMode(p.packetGenMode)
	if err != nil {
		return engine.Config{}, err
	}

	return engine.Config{
		SimDuration:      p.simDuration,
		NodeCount:        p.nodeCount,
		DataSlots:        p.dataSlots,
		CollisionPenalty: p.collisionPenalty,
		Pe:               p.pe,
		MinBe:            p.minBe,
		MaxBe:            p.maxBe,
		MaxNb:            p.maxNb,
		PacketGenMode:    mode,
		PacketProb:       p.packetProb,
		PacketInterval:   p.packetInterval,
		SlotDurationUs:   p.slotDurationUs,
	}, nil
}
