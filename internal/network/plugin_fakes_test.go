package network

import (
	"github.com/tschsim/engine/internal/packet"
	"github.com/tschsim/engine/internal/plugin"
)

// recordingScheduler is a test double recording OnTx/OnPacketReady calls,
// standing in for a concrete scheduling algorithm wired through
// network.New.
type recordingScheduler struct {
	plugin.PassThroughScheduler
	onTxCalls  int
	lastOnTxOK bool
}

func (s *recordingScheduler) OnTx(node plugin.NodeHandle, p *packet.Packet, ok bool) {
	s.onTxCalls++
	s.lastOnTxOK = ok
}

var _ plugin.Scheduler = (*recordingScheduler)(nil)

// recordingRoutingState records OnTx calls for one node.
type recordingRoutingState struct {
	plugin.NullRoutingState
	onTxCalls  int
	lastOnTxOK bool
}

func (r *recordingRoutingState) OnTx(neighbor plugin.NeighborHandle, p *packet.Packet, ok bool, ackRequired bool, cell plugin.CellHandle) {
	r.onTxCalls++
	r.lastOnTxOK = ok
}

// recordingRoutingPlugin hands out one recordingRoutingState per node and
// keeps them addressable by node ID for assertions.
type recordingRoutingPlugin struct {
	states map[int]*recordingRoutingState
}

func newRecordingRoutingPlugin() *recordingRoutingPlugin {
	return &recordingRoutingPlugin{states: make(map[int]*recordingRoutingState)}
}

func (p *recordingRoutingPlugin) Initialize(plugin.NetworkHandle) {}

func (p *recordingRoutingPlugin) NewState(node plugin.NodeHandle) plugin.RoutingState {
	st := &recordingRoutingState{}
	p.states[node.ID()] = st
	return st
}

var _ plugin.RoutingPlugin = (*recordingRoutingPlugin)(nil)
