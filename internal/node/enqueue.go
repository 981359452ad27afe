package node

import "github.com/tschsim/engine/internal/packet"

// Enqueue admits an outbound application packet onto this node's queues,
// fragmenting it first if it exceeds Config.MaxPacketSize and
// FragmentationEnabled is set (spec.md §4.7). A packet too large to send
// whole with fragmentation disabled is dropped outright (DropOther,
// spec.md §7/§8 scenario 5). Each resulting piece is offered to the
// scheduler via OnPacketReady before being routed to the queue of its
// pinned next hop, or to the EB queue for FrameEB-tagged frames. A piece
// the scheduler rejects is dropped via RecordDrop(DropScheduling, ...);
// one that finds its target queue full is dropped via
// RecordDrop(DropQueueFull, ...) rather than blocking.
func (n *Node) Enqueue(p *packet.Packet) {
	if !n.Config.FragmentationEnabled && p.AppLength > n.Config.MaxPacketSize {
		n.RecordDrop(DropOther, p)
		return
	}
	pieces := []*packet.Packet{p}
	if n.Config.FragmentationEnabled {
		pieces = n.fragmenter.Fragment(p, n.Config.MaxPacketSize)
	}
	for _, piece := range pieces {
		n.enqueueOne(piece)
	}
}

func (n *Node) enqueueOne(p *packet.Packet) {
	if n.Scheduler != nil && !n.Scheduler.OnPacketReady(n, p) {
		n.RecordDrop(DropScheduling, p)
		return
	}
	q := n.queueFor(p)
	if !q.Enqueue(p) {
		n.RecordDrop(DropQueueFull, p)
	}
}

func (n *Node) queueFor(p *packet.Packet) *packet.Queue {
	if p.Attrs.FrameType == packet.FrameEB {
		return n.ebQueue
	}
	return n.neighborOrCreate(p.NextHopID).Queue
}

// seenLinkLayerSeqnum reports whether seq has already been observed from
// lastHopID within the configured replay window, recording it if not
// (spec.md §4.6 link-layer duplicate suppression). Each last-hop keeps its
// own bounded ring of the most recently seen sequence numbers.
func (n *Node) seenLinkLayerSeqnum(lastHopID int, seq uint32) bool {
	recent := n.recentSeqnums[lastHopID]
	for _, s := range recent {
		if s == seq {
			return true
		}
	}

	limit := n.Config.NumRecentLinkLayerSeqnums
	recent = append(recent, seq)
	if len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}
	n.recentSeqnums[lastHopID] = recent
	return false
}

// seenAppSeqnum reports whether (sourceID, seq) has already been delivered
// to the application layer on this node, recording it if not (spec.md
// §4.7 end-to-end duplicate suppression, distinct from the per-hop
// link-layer check above). Unlike the link-layer ring, this set is
// unbounded for the lifetime of the run: an end-to-end duplicate can
// arrive arbitrarily late via a different path.
func (n *Node) seenAppSeqnum(sourceID int, seq uint32) bool {
	key := appSeqKey{sourceID: sourceID, seq: seq}
	if _, ok := n.appSeen[key]; ok {
		return true
	}
	n.appSeen[key] = struct{}{}
	return false
}
