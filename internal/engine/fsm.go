package engine

import "fmt"

// stepNode advances one node exactly one tick and returns its visualization
// cell (spec.md §4.3). Ordering: (a) capture the pre-update label, (b) the
// caller has already run packet arrival for this node, (c) run the
// transition below, (d) overwrite the cell with Collision if this tick's
// channel observation says so.
//
// Idle is the one case that cascades: when a packet is waiting, Idle resets
// the per-packet counters and immediately runs the Sensing evaluation for
// this same tick (rather than waiting a tick to notice the channel is
// free). This is required to reproduce spec.md §8 scenario 2's worked
// numbers (TxPreamble visible the tick after arrival, latency == pe +
// backoff + frame length exactly, with no extra tick of Sensing idle in
// between). No other transition cascades: every other "enter Sensing"
// (after a retry, after Failed) takes effect starting the following tick,
// exactly as its bullet in spec.md §4.3 is worded ("next tick, ...").
func stepNode(cfg Config, rng *RNG, n *node, tick int, obs channelObservation, stats *Stats, logs *[]LogEntry) TimelineCell {
	entryState := n.state
	cell := TimelineCell{State: entryState}

	switch n.state {
	case Idle:
		if len(n.queue) > 0 {
			n.resetForNewPacket(cfg.MinBe)
			n.state = Sensing
			stepSensing(cfg, rng, n, tick, obs, logs)
		}

	case Sensing:
		stepSensing(cfg, rng, n, tick, obs, logs)

	case Backoff, BackoffPaused:
		stepBackoff(n, tick, obs, logs, &cell)

	case TxPreamble:
		n.txProgress++
		if n.txProgress >= 1 {
			n.state = TxFc
			n.txProgress = 0
		}

	case TxFc:
		n.txProgress++
		if n.txProgress >= 1 {
			n.state = TxData
			n.txProgress = 0
		}

	case TxData:
		n.txProgress++
		if n.txProgress >= cfg.DataSlots {
			n.state = WaitRifs
			n.txProgress = 0
		}

	case WaitRifs:
		n.txProgress++
		if n.txProgress >= 1 {
			n.state = RxAck
			n.txProgress = 0
		}

	case RxAck:
		stepRxAck(cfg, n, tick, stats, logs)

	case Failed:
		if len(n.queue) > 0 {
			n.state = Sensing
		} else {
			n.state = Idle
		}

	case Collision:
		// Visualization-only label; the driver never dispatches on it
		// directly (spec.md §4.3).
	}

	if entryState.isTransmitter() && obs.collision {
		cell.State = Collision
		cell.IsCollision = true
	}

	return cell
}

// stepSensing implements the Sensing transition (spec.md §4.3). Called
// either as the direct dispatch for a node in Sensing, or inline from Idle
// (see stepNode's doc comment on cascading).
func stepSensing(cfg Config, rng *RNG, n *node, tick int, obs channelObservation, logs *[]LogEntry) {
	if !channelFree(n, obs) {
		return
	}

	drawn := rng.UniformBackoff(n.be) + cfg.Pe
	n.backoffCounter = drawn

	*logs = append(*logs, LogEntry{
		Tick:    tick,
		NodeID:  n.id,
		Kind:    LogInfo,
		Message: fmt.Sprintf("Start Backoff (%d)", drawn),
	})

	if drawn == 0 {
		n.state = TxPreamble
		n.txProgress = 0
		n.doomed = false
		return
	}

	n.state = Backoff
}

// stepBackoff implements the Backoff/BackoffPaused transition (spec.md
// §4.3). The cell's displayed label always reflects this tick's channel
// status (Backoff when free, BackoffPaused when busy), independent of
// which of the two labels the node entered the tick in.
func stepBackoff(n *node, tick int, obs channelObservation, logs *[]LogEntry, cell *TimelineCell) {
	cell.Info = n.backoffCounter
	cell.HasInfo = true

	if !channelFree(n, obs) {
		n.state = BackoffPaused
		cell.State = BackoffPaused
		return
	}

	n.state = Backoff
	cell.State = Backoff

	if n.backoffCounter > 1 {
		n.backoffCounter--
		return
	}

	// backoffCounter == 1: skip the "0" tick and transmit this same tick
	// (spec.md §9 "Backoff semantics when backoffCounter==1").
	n.state = TxPreamble
	n.txProgress = 0
	n.doomed = false
	*logs = append(*logs, LogEntry{
		Tick:    tick,
		NodeID:  n.id,
		Kind:    LogInfo,
		Message: "Backoff complete, transmitting",
	})
}

// stepRxAck implements the RxAck transition (spec.md §4.3): waits for
// AckP+AckFc (2 ticks), then resolves success or retry/drop.
func stepRxAck(cfg Config, n *node, tick int, stats *Stats, logs *[]LogEntry) {
	n.txProgress++
	if n.txProgress < 2 {
		return
	}

	if !n.doomed {
		resolveSuccess(cfg, n, tick, stats, logs)
		return
	}
	resolveFailure(cfg, n, tick, stats, logs)
}

// resolveSuccess implements spec.md §4.3's RxAck success branch.
func resolveSuccess(cfg Config, n *node, tick int, stats *Stats, logs *[]LogEntry) {
	birth := n.dequeue()
	latency := tick - birth
	stats.TotalLatency += latency
	stats.SuccessCount++

	switch {
	case n.nb == 0:
		stats.Success1st++
	case n.nb == 1:
		stats.Success2nd++
	default:
		stats.Success3rd++
	}

	n.resetAfterAttempt(cfg.MinBe)

	*logs = append(*logs, LogEntry{
		Tick:    tick,
		NodeID:  n.id,
		Kind:    LogSuccess,
		Message: "ACK received, transaction complete",
	})

	if len(n.queue) > 0 {
		n.state = Sensing
		return
	}
	n.state = Idle
}

// resolveFailure implements spec.md §4.3's RxAck doomed branch: retry or
// drop depending on the retry count against MaxNb.
func resolveFailure(cfg Config, n *node, tick int, stats *Stats, logs *[]LogEntry) {
	n.nb++

	if n.nb > cfg.MaxNb {
		_ = n.dequeue()
		stats.FailureCount++
		n.resetAfterAttempt(cfg.MinBe)
		n.state = Failed

		*logs = append(*logs, LogEntry{
			Tick:    tick,
			NodeID:  n.id,
			Kind:    LogDrop,
			Message: "Max retries reached",
		})
		return
	}

	n.be = min(n.be+1, cfg.MaxBe)
	n.nav = 0
	n.backoffCounter = 0
	n.state = Sensing

	*logs = append(*logs, LogEntry{
		Tick:    tick,
		NodeID:  n.id,
		Kind:    LogCollision,
		Message: fmt.Sprintf("No ACK. Retrying (NB=%d, BE=%d)", n.nb, n.be),
	})
}
