package plugin

import "github.com/tschsim/engine/internal/packet"

// PassThroughScheduler is the default Scheduler: it accepts every packet
// unpinned (letting the node's own schedule() pick any matching cell) and
// otherwise observes without acting. It matches the behavior of running
// without a scheduling algorithm installed at all.
type PassThroughScheduler struct{}

func (PassThroughScheduler) Initialize()                                    {}
func (PassThroughScheduler) NodeInit(NodeHandle)                            {}
func (PassThroughScheduler) OnPacketReady(NodeHandle, *packet.Packet) bool  { return true }
func (PassThroughScheduler) OnNewTimeSource(NodeHandle, int, int)           {}
func (PassThroughScheduler) OnChildAdded(NodeHandle, int)                   {}
func (PassThroughScheduler) OnChildRemoved(NodeHandle, int)                 {}
func (PassThroughScheduler) OnTx(NodeHandle, *packet.Packet, bool)          {}
func (PassThroughScheduler) OnNodeBecomesRoot(NodeHandle)                   {}
func (PassThroughScheduler) AddRoot(NodeHandle, int)                        {}

var _ Scheduler = PassThroughScheduler{}

// NullRoutingState is the minimal routing state: always joined, never
// routes, never repairs. Pairs with NullRouting to give the core a
// functioning (if trivial) routing layer when no real protocol is
// configured.
type NullRoutingState struct{}

func (NullRoutingState) Start()                                                   {}
func (NullRoutingState) OnTx(NeighborHandle, *packet.Packet, bool, bool, CellHandle) {}
func (NullRoutingState) OnPrepareTxPacket(*packet.Packet)                          {}
func (NullRoutingState) OnForward(*packet.Packet, *packet.Packet) bool            { return true }
func (NullRoutingState) OnNewTimeSource(int, int)                                 {}
func (NullRoutingState) LocalRepair(bool)                                         {}
func (NullRoutingState) IsJoined() bool                                           { return true }
func (NullRoutingState) OnPeriodicTimer()                                         {}
func (NullRoutingState) StatsGet() RoutingStats                                   { return RoutingStats{} }

var _ RoutingState = NullRoutingState{}

// NullRouting is the default RoutingPlugin: it installs NullRoutingState
// everywhere, for simulations that only exercise MAC/scheduling behavior.
type NullRouting struct{}

func (NullRouting) Initialize(NetworkHandle) {}
func (NullRouting) NewState(NodeHandle) RoutingState { return NullRoutingState{} }

var _ RoutingPlugin = NullRouting{}
