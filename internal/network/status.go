package network

import "github.com/tschsim/engine/internal/node"

// NodeStatus is the per-node observer record Phase A exposes each slot
// (spec.md §4.4 Phase A: "expose a per-node status record (channel, cell
// coords, flags) for observers").
type NodeStatus struct {
	NodeID        int
	Decision      node.Decision
	Channel       int
	Timeslot      int
	ChannelOffset int
}
