package engine

import "fmt"

// applyNAV runs the NAV (virtual carrier sense) engine for one tick over
// every node that is not currently a transmitter (spec.md §4.2). Nodes must
// be in ascending id order.
//
// The "Decoded FC" log fires on every tick where fcActive && !collision for
// a non-transmitter, which is likely over-logging inherited from the
// source model; spec.md §9 directs preserving it rather than silently
// fixing it.
func applyNAV(cfg Config, nodes []*node, obs channelObservation, tick int, logs *[]LogEntry) {
	for _, n := range nodes {
		if n.state.isTransmitter() {
			continue
		}

		navPrev := n.nav

		if obs.preambleActive {
			if cfg.CollisionPenalty > n.nav {
				n.nav = cfg.CollisionPenalty
			}
			if navPrev == 0 {
				*logs = append(*logs, LogEntry{
					Tick:    tick,
					NodeID:  n.id,
					Kind:    LogVcs,
					Message: fmt.Sprintf("Heard Preamble, VCS set to %d", cfg.CollisionPenalty),
				})
			}
		}

		if obs.fcActive && !obs.collision {
			remaining := cfg.DataSlots + 1 + 1 + 1
			n.nav = remaining
			*logs = append(*logs, LogEntry{
				Tick:    tick,
				NodeID:  n.id,
				Kind:    LogVcs,
				Message: fmt.Sprintf("Decoded FC, NAV set to %d", remaining),
			})
		}

		if n.nav > 0 {
			n.nav--
		}
	}
}

// channelFree reports whether a node considers the channel idle this tick:
// no physical transmitter and no outstanding NAV (spec.md §4.2 "Semantics").
func channelFree(n *node, obs channelObservation) bool {
	return !obs.physicalBusy && n.nav == 0
}
