package engine

// Simulate runs the slotted CSMA/CA medium-access model for cfg.SimDuration
// ticks and returns the complete result. Simulate is pure: it mutates no
// state outside the returned Result, and running it twice with the same cfg
// and an RNG seeded identically reproduces an identical Result (spec.md §5,
// §8 "Determinism").
//
// Each tick runs three passes, in order, every pass iterating nodes in
// ascending id order: the Channel Observer (observeChannel,
// accountCollisions, classifyChannelTick), the NAV Engine (applyNAV), and
// the FSM Driver (packet arrival then transition, per node).
func Simulate(cfg Config, rng *RNG) Result {
	nodes := make([]*node, cfg.NodeCount)
	for i := range nodes {
		nodes[i] = newNode(i)
	}

	timeline := make(map[int][]TimelineCell, cfg.NodeCount)
	for i := range nodes {
		timeline[i] = make([]TimelineCell, 0, cfg.SimDuration)
	}

	var logs []LogEntry
	var stats Stats

	for tick := 0; tick < cfg.SimDuration; tick++ {
		obs := observeChannel(nodes)
		accountCollisions(nodes, obs, tick, &stats, &logs)
		classifyChannelTick(nodes, obs, &stats)

		applyNAV(cfg, nodes, obs, tick, &logs)

		for _, n := range nodes {
			maybeGeneratePacket(cfg, rng, n, tick, &stats, &logs)
			cell := stepNode(cfg, rng, n, tick, obs, &stats, &logs)
			timeline[n.id] = append(timeline[n.id], cell)
		}
	}

	return Result{
		Timeline: timeline,
		Logs:     logs,
		Stats:    stats,
		Duration: cfg.SimDuration,
	}
}
