// Package engine implements the slotted CSMA/CA medium-access simulator
// modelled on IEEE 802.15.4.
//
// This includes the per-node FSM (state.go, fsm.go), the shared-medium
// model (channel.go, nav.go), packet arrival (packetgen.go), the per-tick
// driver that composes them (sim.go), and the run statistics (the Stats
// type in types.go, updated by channel.go, fsm.go and packetgen.go).
// Simulate is a pure function: given a Config and a seeded
// random source it returns a deterministic Result with no side effects
// outside the returned value.
package engine
