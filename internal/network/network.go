// Package network implements spec.md §4.4's per-slot phase machine: the
// Network owns the node population, the directed Links between them, and
// the single global Timeline, and drives one discrete-event Step() per
// slot (decide, transmit, resolve capture effect, ACK).
package network

import (
	"go.uber.org/zap"

	"github.com/tschsim/engine/internal/config"
	"github.com/tschsim/engine/internal/linkmodel"
	"github.com/tschsim/engine/internal/node"
	"github.com/tschsim/engine/internal/plugin"
	"github.com/tschsim/engine/internal/prng"
	"github.com/tschsim/engine/internal/timeline"
)

type linkKey struct {
	from, to int
}

// Network owns the node population and the directed Links between them
// (spec.md §3 Ownership: "Links are owned by the Network; a Node holds
// indexing references into them").
type Network struct {
	Config   *config.Config
	Logger   *zap.Logger
	Timeline *timeline.Timeline
	Rng      *prng.Source

	Scheduler     plugin.Scheduler
	RoutingPlugin plugin.RoutingPlugin

	Nodes     []*node.Node
	nodeIndex map[int]*node.Node
	links     map[linkKey]*node.Link

	Hooks *ScriptHooks

	freshnessTimer timeline.Handle

	lastStatuses []NodeStatus
}

// New builds an empty Network over a fresh Timeline/Rng seeded from cfg.
// A nil scheduler or routing plugin falls back to the core's pass-through
// defaults (spec.md §6: "unknown algorithm names fall back to a default").
func New(cfg *config.Config, logger *zap.Logger, scheduler plugin.Scheduler, routing plugin.RoutingPlugin) *Network {
	if scheduler == nil {
		scheduler = plugin.PassThroughScheduler{}
	}
	if routing == nil {
		routing = plugin.NullRouting{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Network{
		Config:        cfg,
		Logger:        logger,
		Timeline:      timeline.New(slotTimings(cfg)),
		Rng:           prng.New(cfg.Seed),
		Scheduler:     scheduler,
		RoutingPlugin: routing,
		nodeIndex:     make(map[int]*node.Node),
		links:         make(map[linkKey]*node.Link),
		Hooks:         NewScriptHooks(),
	}
}

// slotTimings builds the Timeline's per-slot duration table from
// MAC_SLOT_DURATION_US (spec.md §4.1); the core only needs one entry since
// nothing in this spec varies slot length by ASN.
func slotTimings(cfg *config.Config) []float64 {
	d := cfg.SlotDurationUs / 1e6
	if d <= 0 {
		d = 0.01
	}
	return []float64{d}
}

// NodeIDs satisfies plugin.NetworkHandle, letting the routing plugin
// enumerate the population during Initialize.
func (net *Network) NodeIDs() []int {
	ids := make([]int, 0, len(net.Nodes))
	for _, n := range net.Nodes {
		ids = append(ids, n.ID())
	}
	return ids
}

// AddNode constructs a Node at pos, registers it in insertion order (the
// reproducibility contract of spec.md §5), and wires it to this Network's
// scheduler and routing plugin.
func (net *Network) AddNode(id int, pos linkmodel.Position, isCoordinator bool) *node.Node {
	n := node.New(id, pos, net.Config, net.Logger, net.Timeline, net.Rng)
	n.IsCoordinator = isCoordinator
	n.Scheduler = net.Scheduler
	n.Routing = net.RoutingPlugin.NewState(n)
	net.Nodes = append(net.Nodes, n)
	net.nodeIndex[id] = n
	return n
}

// Node looks up a node by ID.
func (net *Network) Node(id int) (*node.Node, bool) {
	n, ok := net.nodeIndex[id]
	return n, ok
}

// AddLink registers a directed, active Link from fromID to toID over
// model, and indexes it on the sending node for Phase B's lookup.
func (net *Network) AddLink(fromID, toID int, model linkmodel.Model) *node.Link {
	l := node.NewLink(fromID, toID, model)
	l.IsActive = true
	net.links[linkKey{fromID, toID}] = l
	if from, ok := net.nodeIndex[fromID]; ok {
		from.Links[toID] = l
	}
	return l
}

// Link looks up the directed link from fromID to toID, if any.
func (net *Network) Link(fromID, toID int) (*node.Link, bool) {
	l, ok := net.links[linkKey{fromID, toID}]
	return l, ok
}

// UpdateLinkPositions recomputes every registered link's position-
// dependent state; call after moving a node (spec.md §4.2 Update hook).
func (net *Network) UpdateLinkPositions() {
	for key, l := range net.links {
		from, fromOK := net.nodeIndex[key.from]
		to, toOK := net.nodeIndex[key.to]
		if fromOK && toOK {
			l.Update(from.Position, to.Position)
		}
	}
}

// Initialize arms the scheduler and routing plugins, starts every node's
// association lifecycle, and arms the network-wide freshness-halving
// timer (spec.md §3 Node lifecycle, §4.5).
func (net *Network) Initialize() {
	net.RoutingPlugin.Initialize(net)
	net.Scheduler.Initialize()
	for _, n := range net.Nodes {
		n.Initialize()
	}
	net.armFreshnessHalvingTimer()
}

// armFreshnessHalvingTimer schedules the next quarter-hour boundary via
// internal/node's jinzhu/now-backed helper, halving every neighbor's
// freshness counter on every node when it fires (spec.md §4.5).
func (net *Network) armFreshnessHalvingTimer() {
	boundary := node.NextFreshnessHalvingBoundary(net.Timeline.Seconds())
	interval := boundary - net.Timeline.Seconds()
	h, err := net.Timeline.AddTimer(interval, false, nil, func(any) { net.onFreshnessHalving() })
	if err == nil {
		net.freshnessTimer = h
	}
}

func (net *Network) onFreshnessHalving() {
	for _, n := range net.Nodes {
		for _, nb := range n.Neighbors {
			nb.HalveFreshness()
		}
	}
	net.armFreshnessHalvingTimer()
}

// Statuses returns the per-node status records exposed by the most recent
// Step's Phase A, for observer/driver consumption (spec.md §4.4 Phase A).
func (net *Network) Statuses() []NodeStatus { return net.lastStatuses }
