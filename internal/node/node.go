// Package node implements spec.md §3-4's per-node data model: slotframes
// and cells, neighbor/link-quality bookkeeping, the schedule() decision
// algorithm, and the TSCH association/synchronization state machine.
package node

import (
	"github.com/tschsim/engine/internal/config"
	"github.com/tschsim/engine/internal/linkmodel"
	"github.com/tschsim/engine/internal/packet"
	"github.com/tschsim/engine/internal/plugin"
	"github.com/tschsim/engine/internal/prng"
	"github.com/tschsim/engine/internal/timeline"
	"go.uber.org/zap"
)

// Decision is the outcome of one call to schedule() (spec.md §4.3).
type Decision int

const (
	DecisionSleep Decision = iota
	DecisionTX
	DecisionRX
	DecisionScan
)

func (d Decision) String() string {
	switch d {
	case DecisionTX:
		return "TX"
	case DecisionRX:
		return "RX"
	case DecisionScan:
		return "SCAN"
	default:
		return "SLEEP"
	}
}

// DropReason classifies a runtime packet drop for per-node stats
// (spec.md §7.1 category 3). Defined here (not in internal/network,
// which depends on this package) so both the scheduling/queueing code in
// this package and internal/network's phase machine can record drops
// against the same counters without an import cycle.
type DropReason int

const (
	DropQueueFull DropReason = iota
	DropTxLimit
	DropRouting
	DropScheduling
	DropOther
)

// Stats holds the per-node counters enumerated in spec.md §8.
type Stats struct {
	MacTxUnicast    int
	MacAcked        int
	MacRxCollision  int
	AppNumEndpointRx int

	AppNumQueueDrops   int
	AppNumTxLimitDrops int
	AppNumOtherDrops   int
	RoutingDrops       int
	SchedulingDrops    int

	SlotsRxScanning int
}

// appSeqKey de-duplicates application-layer deliveries by (source, seq).
type appSeqKey struct {
	sourceID int
	seq      uint32
}

// Node is an addressable radio (spec.md §3).
type Node struct {
	id       int
	Position linkmodel.Position

	Config   *config.Config
	Logger   *zap.Logger
	Timeline *timeline.Timeline
	Rng      *prng.Source

	Slotframes []*Slotframe
	Neighbors  map[int]*Neighbor

	Links          map[int]*Link // active, outbound, keyed by neighbor ID
	PotentialLinks map[int]*Link // inactive but connectable, keyed by neighbor ID

	HasJoined         bool
	IsCoordinator     bool
	JoinPriority      int
	hasTimeSource     bool
	CurrentTimeSource int
	HoppingIndex      int
	ScanChannelOffset int

	AssocState AssocState

	skipSlots   int
	backupCell  *Cell
	backupSF    *Slotframe

	Scheduler plugin.Scheduler
	Routing   plugin.RoutingState

	ebQueue *packet.Queue

	recentSeqnums map[int][]uint32 // per-lasthop ring of recently-seen link-layer seqnums
	appSeen       map[appSeqKey]struct{}

	fragmenter  packet.Fragmenter
	reassembler *packet.Reassembler

	Stats Stats

	scanTimer      timeline.Handle
	ebTimer        timeline.Handle
	keepaliveTimer timeline.Handle
	leaveTimer     timeline.Handle
}

// New builds a Node with empty slotframes/neighbors; callers add
// slotframes and neighbors before calling Initialize.
func New(id int, pos linkmodel.Position, cfg *config.Config, logger *zap.Logger, tl *timeline.Timeline, rng *prng.Source) *Node {
	return &Node{
		id:             id,
		Position:       pos,
		Config:         cfg,
		Logger:         logger,
		Timeline:       tl,
		Rng:            rng,
		Neighbors:      make(map[int]*Neighbor),
		Links:          make(map[int]*Link),
		PotentialLinks: make(map[int]*Link),
		ebQueue:        packet.NewQueue(cfg.QueueSize),
		recentSeqnums:  make(map[int][]uint32),
		appSeen:        make(map[appSeqKey]struct{}),
		reassembler:    packet.NewReassembler(tl, cfg.ReassemblyTimeoutSec),
		AssocState:     StateScanning,
	}
}

// ID satisfies plugin.NodeHandle.
func (n *Node) ID() int { return n.id }

func (n *Node) neighborOrCreate(id int) *Neighbor {
	nb, ok := n.Neighbors[id]
	if !ok {
		nb = NewNeighbor(id, n.Config)
		n.Neighbors[id] = nb
	}
	return nb
}

// Neighbor returns (and lazily creates) the Neighbor record for id,
// including the broadcast and EB virtual neighbors.
func (n *Node) Neighbor(id int) *Neighbor { return n.neighborOrCreate(id) }

// AddSlotframe appends a new slotframe and returns it.
func (n *Node) AddSlotframe(handle, size int) *Slotframe {
	sf := NewSlotframe(handle, size)
	n.Slotframes = append(n.Slotframes, sf)
	return sf
}

// Initialize arms the node's scheduler hook and routing state and starts
// association scanning (spec.md §3 Node lifecycle).
func (n *Node) Initialize() {
	if n.Scheduler != nil {
		n.Scheduler.NodeInit(n)
	}
	if n.Routing != nil {
		n.Routing.Start()
	}
	if n.IsCoordinator {
		n.HasJoined = true
		n.AssocState = StateJoined
		n.armEBTimer()
		return
	}
	n.armScanTimer()
}

// RecordDrop increments the counter matching reason and completes p with
// ok=false (spec.md §7.1 category 3: every runtime drop fires the
// sent-callback and is counted on the packet's originating node).
func (n *Node) RecordDrop(reason DropReason, p *packet.Packet) {
	switch reason {
	case DropQueueFull:
		n.Stats.AppNumQueueDrops++
	case DropTxLimit:
		n.Stats.AppNumTxLimitDrops++
	case DropRouting:
		n.Stats.RoutingDrops++
	case DropScheduling:
		n.Stats.SchedulingDrops++
	default:
		n.Stats.AppNumOtherDrops++
	}
	if p != nil {
		p.Complete(false)
	}
}
