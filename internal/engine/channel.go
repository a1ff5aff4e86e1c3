package engine

// channelObservation is the Channel Observer's per-tick read of the shared
// medium, computed from the pre-update FSM label of every node (spec.md
// §4.1). It is produced once per tick and consumed by both the NAV Engine
// and the FSM Driver so every observer sees the same picture.
type channelObservation struct {
	// physicalBusy is true iff at least one node is a transmitter this tick.
	physicalBusy bool

	// collision is true iff more than one node is a transmitter this tick.
	collision bool

	// preambleActive is true iff at least one transmitter is in TxPreamble.
	preambleActive bool

	// fcActive is true iff at least one transmitter is in TxFc. Only
	// meaningful in conjunction with !collision (spec.md §4.1).
	fcActive bool

	// waitRifsCount is the number of nodes in WaitRifs this tick.
	waitRifsCount int
}

// observeChannel builds the channel observation for one tick from the
// nodes' pre-update labels. nodes must be in ascending id order.
func observeChannel(nodes []*node) channelObservation {
	var obs channelObservation
	var transmitters int

	for _, n := range nodes {
		switch {
		case n.state.isTransmitter():
			transmitters++
			switch n.state {
			case TxPreamble:
				obs.preambleActive = true
			case TxFc:
				obs.fcActive = true
			}
		case n.state == WaitRifs:
			obs.waitRifsCount++
		}
	}

	obs.physicalBusy = transmitters > 0
	obs.collision = transmitters > 1

	return obs
}

// accountCollisions implements spec.md §4.1 "Collision accounting": every
// transmitter that has not yet been marked doomed during a colliding tick
// is marked doomed, counted, and logged. nodes must be in ascending id
// order (spec.md §5 ordering guarantee).
func accountCollisions(nodes []*node, obs channelObservation, tick int, stats *Stats, logs *[]LogEntry) {
	if !obs.collision {
		return
	}
	for _, n := range nodes {
		if !n.state.isTransmitter() {
			continue
		}
		if n.doomed {
			continue
		}
		n.doomed = true
		stats.CollisionCount++
		*logs = append(*logs, LogEntry{
			Tick:    tick,
			NodeID:  n.id,
			Kind:    LogCollision,
			Message: "Signal overlap detected",
		})
	}
}

// classifyChannelTick implements spec.md §4.1's channel-utilization
// classification, in priority order.
func classifyChannelTick(nodes []*node, obs channelObservation, stats *Stats) {
	switch {
	case obs.collision:
		stats.ChannelCollisionTicks++
	case obs.physicalBusy || obs.waitRifsCount > 0:
		stats.ChannelTxTicks++
	case anyInBackoff(nodes):
		stats.ChannelBackoffTicks++
	default:
		stats.ChannelIdleTicks++
	}
}

// anyInBackoff reports whether any node is currently in Backoff or
// BackoffPaused, using the pre-update snapshot.
func anyInBackoff(nodes []*node) bool {
	for _, n := range nodes {
		if n.state == Backoff || n.state == BackoffPaused {
			return true
		}
	}
	return false
}
