package engine

import "fmt"

// maybeGeneratePacket applies the packet-arrival rule for one node at one
// tick (spec.md §4.3 "Packet arrival"). On arrival it enqueues the packet,
// updates the run's counters, and logs an Info entry.
func maybeGeneratePacket(cfg Config, rng *RNG, n *node, tick int, stats *Stats, logs *[]LogEntry) {
	var arrived bool
	switch cfg.PacketGenMode {
	case ModeInterval:
		arrived = tick%cfg.PacketInterval == 0
	case ModeRandom:
		arrived = rng.Bernoulli(cfg.PacketProb)
	default:
		arrived = false
	}

	if !arrived {
		return
	}

	n.enqueue(tick)
	stats.TotalPacketsGenerated++
	if depth := len(n.queue); depth > stats.MaxQueueDepth {
		stats.MaxQueueDepth = depth
	}

	*logs = append(*logs, LogEntry{
		Tick:    tick,
		NodeID:  n.id,
		Kind:    LogInfo,
		Message: fmt.Sprintf("Packet generated (Queue: %d)", len(n.queue)),
	})
}
