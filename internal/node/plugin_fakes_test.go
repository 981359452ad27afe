package node

import (
	"github.com/tschsim/engine/internal/packet"
	"github.com/tschsim/engine/internal/plugin"
)

// recordingScheduler and recordingRoutingState are test doubles that
// record which hook calls the node package fires, standing in for a
// concrete scheduler/routing algorithm.
type recordingScheduler struct {
	acceptPacketReady bool

	packetReadyCalls int
	onTxCalls        int
	lastOnTxOK       bool

	newTimeSourceCalls int
	onNewTimeSourceOld int
	onNewTimeSourceNew int
}

func (s *recordingScheduler) Initialize()                     {}
func (s *recordingScheduler) NodeInit(plugin.NodeHandle)       {}
func (s *recordingScheduler) OnPacketReady(node plugin.NodeHandle, p *packet.Packet) bool {
	s.packetReadyCalls++
	return s.acceptPacketReady
}
func (s *recordingScheduler) OnNewTimeSource(node plugin.NodeHandle, oldSource, newSource int) {
	s.newTimeSourceCalls++
	s.onNewTimeSourceOld = oldSource
	s.onNewTimeSourceNew = newSource
}
func (s *recordingScheduler) OnChildAdded(plugin.NodeHandle, int)   {}
func (s *recordingScheduler) OnChildRemoved(plugin.NodeHandle, int) {}
func (s *recordingScheduler) OnTx(node plugin.NodeHandle, p *packet.Packet, ok bool) {
	s.onTxCalls++
	s.lastOnTxOK = ok
}
func (s *recordingScheduler) OnNodeBecomesRoot(plugin.NodeHandle) {}
func (s *recordingScheduler) AddRoot(plugin.NodeHandle, int)      {}

var _ plugin.Scheduler = (*recordingScheduler)(nil)

type recordingRoutingState struct {
	onTxCalls          int
	lastOnTxOK         bool
	newTimeSourceCalls int
}

func (r *recordingRoutingState) Start() {}
func (r *recordingRoutingState) OnTx(neighbor plugin.NeighborHandle, p *packet.Packet, ok bool, ackRequired bool, cell plugin.CellHandle) {
	r.onTxCalls++
	r.lastOnTxOK = ok
}
func (r *recordingRoutingState) OnPrepareTxPacket(*packet.Packet) {}
func (r *recordingRoutingState) OnForward(*packet.Packet, *packet.Packet) bool {
	return true
}
func (r *recordingRoutingState) OnNewTimeSource(oldSource, newSource int) {
	r.newTimeSourceCalls++
}
func (r *recordingRoutingState) LocalRepair(bool) {}
func (r *recordingRoutingState) IsJoined() bool   { return true }
func (r *recordingRoutingState) OnPeriodicTimer()  {}
func (r *recordingRoutingState) StatsGet() plugin.RoutingStats {
	return plugin.RoutingStats{}
}

var _ plugin.RoutingState = (*recordingRoutingState)(nil)
