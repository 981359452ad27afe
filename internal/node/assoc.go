package node

import (
	"time"

	"github.com/jinzhu/now"

	"github.com/tschsim/engine/internal/packet"
)

// simEpoch anchors simulated seconds to a wall-clock instant purely so
// jinzhu/now's calendar helpers (BeginningOfHour, etc.) can compute
// quarter-hour boundaries; the simulation never reads the real clock.
var simEpoch = time.Unix(0, 0).UTC()

// NextFreshnessHalvingBoundary returns, in simulated seconds, the next
// quarter-hour wall-clock boundary strictly after nowSeconds. internal/network
// arms one network-wide timer at this boundary and, on every subsequent
// fire, halves every neighbor's freshness counter on every node (spec.md
// §4.5's "periodic halving timer every 15 minutes").
func NextFreshnessHalvingBoundary(nowSeconds float64) float64 {
	wall := simEpoch.Add(time.Duration(nowSeconds * float64(time.Second)))
	boundary := now.New(wall).BeginningOfHour()
	for !boundary.After(wall) {
		boundary = boundary.Add(15 * time.Minute)
	}
	return boundary.Sub(simEpoch).Seconds()
}

// AssocState is one of the three states in spec.md §4.6's association
// and synchronization state machine.
type AssocState int

const (
	StateScanning AssocState = iota
	StateJoined
	StateDesyncPending
)

func (s AssocState) String() string {
	switch s {
	case StateJoined:
		return "JOINED"
	case StateDesyncPending:
		return "DESYNC_PENDING"
	default:
		return "SCANNING"
	}
}

// armScanTimer (re)starts the periodic channel-offset scan: every
// MAC_CHANNEL_SCAN_DURATION_SEC, pick a new random offset from the join
// hopping sequence (spec.md §4.6).
func (n *Node) armScanTimer() {
	if n.scanTimer != 0 {
		n.Timeline.RemoveTimer(n.scanTimer)
	}
	n.pickScanChannelOffset()
	h, err := n.Timeline.AddTimer(n.Config.ChannelScanDurationSec, true, nil, func(any) {
		n.pickScanChannelOffset()
	})
	if err == nil {
		n.scanTimer = h
	}
}

func (n *Node) pickScanChannelOffset() {
	seq := n.Config.HoppingSequence
	if len(seq) == 0 {
		n.ScanChannelOffset = 0
		return
	}
	n.ScanChannelOffset = seq[n.Rng.IntRange(0, len(seq)-1)]
}

// OnEBReceived processes an Enhanced Beacon from neighborID, joining the
// network if the advertised join priority is acceptable and the node has
// not already joined (spec.md §4.6).
func (n *Node) OnEBReceived(neighborID, ebJoinPriority int) {
	if n.HasJoined {
		return
	}
	if ebJoinPriority >= n.Config.MaxJoinPriority {
		return
	}
	n.HasJoined = true
	n.JoinPriority = ebJoinPriority + 1
	n.setTimeSource(neighborID)
	n.AssocState = StateJoined

	if n.scanTimer != 0 {
		n.Timeline.RemoveTimer(n.scanTimer)
		n.scanTimer = 0
	}
	n.armKeepaliveTimer(n.Config.KeepaliveTimeoutSec / 2)
	n.armEBTimer()
}

func (n *Node) setTimeSource(neighborID int) {
	old := n.CurrentTimeSource
	n.hasTimeSource = true
	n.CurrentTimeSource = neighborID
	if n.Scheduler != nil {
		n.Scheduler.OnNewTimeSource(n, old, neighborID)
	}
	if n.Routing != nil {
		n.Routing.OnNewTimeSource(old, neighborID)
	}
}

func (n *Node) clearTimeSource() {
	n.hasTimeSource = false
	n.CurrentTimeSource = 0
}

// HasTimeSource reports whether the node currently tracks a time source.
func (n *Node) HasTimeSource() bool { return n.hasTimeSource }

// armKeepaliveTimer (re)arms the keepalive timer at the given interval.
func (n *Node) armKeepaliveTimer(interval float64) {
	if n.keepaliveTimer != 0 {
		n.Timeline.RemoveTimer(n.keepaliveTimer)
	}
	h, err := n.Timeline.AddTimer(interval, false, nil, func(any) { n.onKeepaliveTimeout() })
	if err == nil {
		n.keepaliveTimer = h
	}
}

// onKeepaliveTimeout fires when MAC_KEEPALIVE_TIMEOUT_S passes without a
// sync refresh: emits a keepalive and transitions JOINED → DESYNC_PENDING
// (spec.md §4.6).
func (n *Node) onKeepaliveTimeout() {
	if n.AssocState != StateJoined {
		return
	}
	n.AssocState = StateDesyncPending
	n.enqueueKeepalive()

	h, err := n.Timeline.AddTimer(n.Config.DesyncThresholdSec, false, nil, func(any) { n.onDesyncTimeout() })
	if err == nil {
		n.leaveTimer = h
	}
}

// enqueueKeepalive places a keepalive frame on the EB virtual-neighbor
// queue bound for the current time source.
func (n *Node) enqueueKeepalive() {
	if !n.hasTimeSource {
		return
	}
	p := packet.New(n.id, n.CurrentTimeSource, 0, n.Config.HeaderSize, n.CurrentTimeSource)
	p.Attrs.FrameType = packet.FrameEB
	n.ebQueue.Enqueue(p)
}

// RefreshSync cancels the keepalive/leave timers and rearms keepalive at
// the normal cadence; called on any RX from, or ACK by, the current time
// source (spec.md §4.6: "Any RX from the time source OR an ACK from the
// time source refreshes both timers").
func (n *Node) RefreshSync(fromID int) {
	if !n.hasTimeSource || fromID != n.CurrentTimeSource {
		return
	}
	if n.AssocState == StateDesyncPending {
		n.AssocState = StateJoined
	}
	if n.leaveTimer != 0 {
		n.Timeline.RemoveTimer(n.leaveTimer)
		n.leaveTimer = 0
	}
	n.armKeepaliveTimer(n.Config.KeepaliveTimeoutSec)
}

// onDesyncTimeout fires when the leave timer expires: flushes all
// queues, clears the time source, invokes routing local repair, and
// resumes scanning (spec.md §4.6).
func (n *Node) onDesyncTimeout() {
	if n.AssocState != StateDesyncPending {
		return
	}
	n.flushAllQueues()
	n.clearTimeSource()
	n.HasJoined = false
	n.AssocState = StateScanning
	if n.ebTimer != 0 {
		n.Timeline.RemoveTimer(n.ebTimer)
		n.ebTimer = 0
	}
	if n.Routing != nil {
		n.Routing.LocalRepair(false)
	}
	n.armScanTimer()
}

func (n *Node) flushAllQueues() {
	for _, nb := range n.Neighbors {
		for _, p := range nb.Queue.Drain() {
			p.Complete(false)
		}
	}
	for _, p := range n.ebQueue.Drain() {
		p.Complete(false)
	}
}

// armEBTimer arms the jittered Enhanced Beacon emission timer: period -
// period/4 + U(0, period/4) (spec.md §4.6).
func (n *Node) armEBTimer() {
	period := n.Config.EBPeriodSec
	if period <= 0 {
		return
	}
	interval := period - period/4 + n.Rng.Float64()*(period/4)
	h, err := n.Timeline.AddTimer(interval, false, nil, func(any) { n.onEBTimer() })
	if err == nil {
		n.ebTimer = h
	}
}

// isLeaf reports whether the node has no routing-downstream children;
// delegated to the routing plugin's stats, since the core has no
// built-in notion of a routing DAG topology.
func (n *Node) isLeaf() bool {
	stats := n.routingStats()
	return stats["children"] == 0
}

func (n *Node) routingStats() map[string]float64 {
	if n.Routing == nil {
		return nil
	}
	s := n.Routing.StatsGet()
	if s == nil {
		return map[string]float64{}
	}
	return s
}

// onEBTimer emits an Enhanced Beacon iff the EB queue is empty, the node
// has joined a routing DAG, is not a leaf, and its configured EB period
// is positive (spec.md §4.6), then rearms itself.
func (n *Node) onEBTimer() {
	defer n.armEBTimer()

	if n.ebQueue.Len() != 0 {
		return
	}
	if !n.HasJoined && !n.IsCoordinator {
		return
	}
	if n.Routing != nil && !n.Routing.IsJoined() {
		return
	}
	if n.isLeaf() {
		return
	}
	p := packet.New(n.id, BroadcastNeighborID, 0, n.Config.EBPacketSize, BroadcastNeighborID)
	p.Attrs.FrameType = packet.FrameEB
	p.Attrs.HasJoinPriority = true
	p.Attrs.JoinPriority = n.JoinPriority
	n.ebQueue.Enqueue(p)
}
