package engine

// State is a node's FSM label (spec.md §3, §9 "Variants over inheritance").
// The set is closed and small; all dispatch in fsm.go is an exhaustive
// switch over State, not a polymorphic hierarchy.
type State uint8

const (
	// Idle is the initial state and the state a node returns to once its
	// queue is empty after a successful or dropped attempt.
	Idle State = iota + 1

	// Sensing evaluates the channel once before drawing a backoff.
	Sensing

	// Backoff is counting down while the channel is free.
	Backoff

	// BackoffPaused is counting down frozen because the channel is busy.
	BackoffPaused

	// TxPreamble is the first sub-phase of a transmission attempt.
	TxPreamble

	// TxFc is the frame-control sub-phase.
	TxFc

	// TxData is the payload sub-phase (DataSlots ticks long).
	TxData

	// WaitRifs is the silent inter-frame spacing sub-phase.
	WaitRifs

	// RxAck is waiting for (and counting) the acknowledgement sub-phases.
	RxAck

	// Collision is a visualization-only label; the driver never transitions
	// a node into it directly (spec.md §4.3) — it overwrites the rendered
	// cell for a tick when a transmitter's attempt physically overlapped.
	Collision

	// Failed is a one-tick sink entered immediately after a packet is
	// dropped for exhausting retries.
	Failed
)

// stateNames maps state values to their human-readable strings.
var stateNames = map[State]string{
	Idle:          "Idle",
	Sensing:       "Sensing",
	Backoff:       "Backoff",
	BackoffPaused: "BackoffPaused",
	TxPreamble:    "TxPreamble",
	TxFc:          "TxFc",
	TxData:        "TxData",
	WaitRifs:      "WaitRifs",
	RxAck:         "RxAck",
	Collision:     "Collision",
	Failed:        "Failed",
}

// String returns the human-readable name for the FSM label.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return unknownStr
}

// isTransmitter reports whether a node in this state counts as a
// transmitter for channel-observation purposes (spec.md §4.1): the set
// {TxPreamble, TxFc, TxData, RxAck}.
func (s State) isTransmitter() bool {
	switch s {
	case TxPreamble, TxFc, TxData, RxAck:
		return true
	default:
		return false
	}
}
