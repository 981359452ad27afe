package node

import "github.com/tschsim/engine/internal/packet"

// Receive handles one inbound packet that the network's Phase C delivered
// to this node (spec.md §4.4 Phase C, §4.6, §4.7). The caller has already
// run capture-effect resolution; Receive runs the full link-layer
// reception path: per-last-hop duplicate suppression, sync refresh, EB
// handling, next-hop filtering, reassembly, the forward hook (a packet for
// another destination is then counted as a routing drop, not forwarded),
// and end-to-end duplicate suppression.
func (n *Node) Receive(p *packet.Packet) {
	if n.seenLinkLayerSeqnum(p.LastHopID, p.LinkSeqNum) {
		return
	}
	n.RefreshSync(p.LastHopID)

	if p.Attrs.FrameType == packet.FrameEB {
		n.OnEBReceived(p.LastHopID, p.Attrs.JoinPriority)
		return
	}

	if p.NextHopID != n.id && p.NextHopID != BroadcastNeighborID {
		// Overheard but not addressed to us (e.g. capture effect delivered
		// a frame meant for a neighbor listening on the same cell). Not
		// our packet to complete — just count it.
		n.Stats.AppNumOtherDrops++
		return
	}

	whole, complete := n.reassembler.Receive(p)
	if !complete {
		return
	}

	if whole.DestinationID != n.id && whole.DestinationID != BroadcastNeighborID {
		// We are an intermediate hop, not the final destination. The core
		// ships no real routing algorithm (spec.md Non-goals); the
		// routing plugin gets a chance to veto, but with no next-hop
		// table to consult this is a dead end either way.
		if n.Routing != nil {
			n.Routing.OnForward(whole, whole)
		}
		n.RecordDrop(DropRouting, whole)
		return
	}

	if n.seenAppSeqnum(whole.SourceNodeID, whole.SeqNum) {
		return
	}
	n.Stats.AppNumEndpointRx++
}
