package engine

import "testing"

func TestObserveChannel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		states         []State
		wantBusy       bool
		wantCollision  bool
		wantPreamble   bool
		wantFc         bool
		wantWaitRifs   int
	}{
		{
			name:   "all idle",
			states: []State{Idle, Idle},
		},
		{
			name:         "single transmitter preamble",
			states:       []State{TxPreamble, Idle},
			wantBusy:     true,
			wantPreamble: true,
		},
		{
			name:     "single transmitter fc",
			states:   []State{Idle, TxFc},
			wantBusy: true,
			wantFc:   true,
		},
		{
			name:          "two transmitters collide",
			states:        []State{TxPreamble, TxData},
			wantBusy:      true,
			wantCollision: true,
			wantPreamble:  true,
		},
		{
			name:         "wait rifs is not a transmitter",
			states:       []State{WaitRifs, Idle},
			wantWaitRifs: 1,
		},
		{
			name:     "rxack counts as transmitter",
			states:   []State{RxAck},
			wantBusy: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			nodes := make([]*node, len(tt.states))
			for i, s := range tt.states {
				nodes[i] = newNode(i)
				nodes[i].state = s
			}

			obs := observeChannel(nodes)

			if obs.physicalBusy != tt.wantBusy {
				t.Errorf("physicalBusy = %v, want %v", obs.physicalBusy, tt.wantBusy)
			}
			if obs.collision != tt.wantCollision {
				t.Errorf("collision = %v, want %v", obs.collision, tt.wantCollision)
			}
			if obs.preambleActive != tt.wantPreamble {
				t.Errorf("preambleActive = %v, want %v", obs.preambleActive, tt.wantPreamble)
			}
			if obs.fcActive != tt.wantFc {
				t.Errorf("fcActive = %v, want %v", obs.fcActive, tt.wantFc)
			}
			if obs.waitRifsCount != tt.wantWaitRifs {
				t.Errorf("waitRifsCount = %d, want %d", obs.waitRifsCount, tt.wantWaitRifs)
			}
		})
	}
}

func TestAccountCollisionsMarksOncePerAttempt(t *testing.T) {
	t.Parallel()

	n0 := newNode(0)
	n0.state = TxPreamble
	n1 := newNode(1)
	n1.state = TxFc
	nodes := []*node{n0, n1}

	obs := observeChannel(nodes)
	var stats Stats
	var logs []LogEntry

	accountCollisions(nodes, obs, 3, &stats, &logs)
	if stats.CollisionCount != 2 {
		t.Fatalf("CollisionCount after first tick = %d, want 2", stats.CollisionCount)
	}
	if len(logs) != 2 {
		t.Fatalf("len(logs) = %d, want 2", len(logs))
	}
	for _, l := range logs {
		if l.Kind != LogCollision || l.Message != "Signal overlap detected" {
			t.Errorf("unexpected log entry %+v", l)
		}
	}

	// Second colliding tick for the same attempt must not double-count.
	accountCollisions(nodes, obs, 4, &stats, &logs)
	if stats.CollisionCount != 2 {
		t.Fatalf("CollisionCount after second tick = %d, want 2 (already doomed)", stats.CollisionCount)
	}
}

func TestClassifyChannelTickPriority(t *testing.T) {
	t.Parallel()

	collideA := newNode(0)
	collideA.state = TxPreamble
	collideB := newNode(1)
	collideB.state = TxData

	var stats Stats
	classifyChannelTick([]*node{collideA, collideB}, observeChannel([]*node{collideA, collideB}), &stats)
	if stats.ChannelCollisionTicks != 1 {
		t.Fatalf("ChannelCollisionTicks = %d, want 1", stats.ChannelCollisionTicks)
	}

	rifsNode := newNode(0)
	rifsNode.state = WaitRifs
	stats = Stats{}
	classifyChannelTick([]*node{rifsNode}, observeChannel([]*node{rifsNode}), &stats)
	if stats.ChannelTxTicks != 1 {
		t.Fatalf("ChannelTxTicks = %d, want 1 (RIFS counted as tx)", stats.ChannelTxTicks)
	}

	backoffNode := newNode(0)
	backoffNode.state = Backoff
	stats = Stats{}
	classifyChannelTick([]*node{backoffNode}, observeChannel([]*node{backoffNode}), &stats)
	if stats.ChannelBackoffTicks != 1 {
		t.Fatalf("ChannelBackoffTicks = %d, want 1", stats.ChannelBackoffTicks)
	}

	idleNode := newNode(0)
	stats = Stats{}
	classifyChannelTick([]*node{idleNode}, observeChannel([]*node{idleNode}), &stats)
	if stats.ChannelIdleTicks != 1 {
		t.Fatalf("ChannelIdleTicks = %d, want 1", stats.ChannelIdleTicks)
	}
}
