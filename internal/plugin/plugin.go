// Package plugin declares the capability-trait interfaces through which
// scheduler and routing algorithms plug into the simulation core
// (spec.md §6, §9 Design Notes: "Polymorphic modules... model each as a
// capability-trait/interface"). Concrete scheduler/routing algorithms
// (Orchestra, 6TiSCH-minimal, RPL, ...) are out of scope for the core
// (spec.md's Non-goals); this package only fixes the contract and ships
// pass-through defaults.
//
// These interfaces are deliberately narrow (NodeHandle/NeighborHandle/
// CellHandle) rather than taking concrete *node.Node types, because
// internal/node must import internal/plugin to hold a RoutingState field
// on each node — a concrete dependency the other way would cycle.
package plugin

import "github.com/tschsim/engine/internal/packet"

// NodeHandle is the minimal node-identity surface a plugin needs.
type NodeHandle interface {
	ID() int
}

// NeighborHandle is the minimal neighbor-identity surface a plugin needs.
type NeighborHandle interface {
	ID() int
}

// CellHandle is the minimal cell surface a plugin needs to reason about
// which slot a transmission used.
type CellHandle interface {
	Timeslot() int
	ChannelOffset() int
	NeighborID() int
}

// Scheduler is the scheduler-trait contract consumed by the core
// (spec.md §6): one instance is held by the Network, shared by every
// node. Concrete algorithms (Orchestra, 6TiSCH-minimal, Leaf-and-
// Forwarder) implement this to decide per-slot scheduling behavior and
// to observe transmission outcomes.
type Scheduler interface {
	// Initialize runs once, before any node is stepped.
	Initialize()
	// NodeInit runs once per node, during simulation construction.
	NodeInit(node NodeHandle)
	// OnPacketReady is called when a packet becomes eligible for
	// transmission. It may pin the packet's slotframe/timeslot/channel-
	// offset attributes and returns false to reject the packet outright
	// (counted as a scheduling_drop by the caller).
	OnPacketReady(node NodeHandle, p *packet.Packet) bool
	OnNewTimeSource(node NodeHandle, oldSource, newSource int)
	OnChildAdded(node NodeHandle, childID int)
	OnChildRemoved(node NodeHandle, childID int)
	OnTx(node NodeHandle, p *packet.Packet, ok bool)
	OnNodeBecomesRoot(node NodeHandle)
	AddRoot(node NodeHandle, rootID int)
}

// RoutingStats is the opaque counter snapshot returned by
// RoutingState.StatsGet; concrete routing algorithms define their own
// counter sets, so the core treats this as an opaque map for logging and
// aggregate reporting.
type RoutingStats map[string]float64

// RoutingState is one node's routing-protocol instance (spec.md §6): the
// routing plugin's NewState constructs one of these for each node as the
// network adds it, typed through NodeHandle to avoid an import cycle back
// to internal/network.
type RoutingState interface {
	Start()
	OnTx(neighbor NeighborHandle, p *packet.Packet, ok bool, ackRequired bool, cell CellHandle)
	OnPrepareTxPacket(p *packet.Packet)
	// OnForward observes a packet being relayed and may substitute a
	// replacement packet (e.g. to rewrite routing headers); returning
	// false vetoes the forward (counted as a routing_drop).
	OnForward(oldPkt, newPkt *packet.Packet) bool
	OnNewTimeSource(oldSource, newSource int)
	LocalRepair(fromInit bool)
	IsJoined() bool
	OnPeriodicTimer()
	StatsGet() RoutingStats
}

// NetworkHandle is the minimal network-identity surface the routing
// plugin's Initialize needs (node lookup by ID), again to avoid an
// import cycle back to internal/network.
type NetworkHandle interface {
	NodeIDs() []int
}

// RoutingPlugin is the routing-trait factory contract: one instance is
// held by the Network and used to construct each node's RoutingState.
type RoutingPlugin interface {
	Initialize(network NetworkHandle)
	NewState(node NodeHandle) RoutingState
}
