package node

// AddCellTo inserts c into sf and, if c is a dedicated (non-broadcast) TX
// cell, records it against the target neighbor's DedicatedTxCells so the
// shared-cell backoff decrement (spec.md §4.5) can tell a neighbor with
// its own slot apart from one relying purely on contention.
func (n *Node) AddCellTo(sf *Slotframe, c *Cell, allowOverlap bool) error {
	if err := sf.AddCell(c, allowOverlap); err != nil {
		return err
	}
	if c.IsTX() && c.NeighborID() != BroadcastNeighborID {
		n.neighborOrCreate(c.NeighborID()).DedicatedTxCells++
	}
	return nil
}

// DecrementSharedCellBackoffs runs the per-slot CSMA countdown for a
// shared cell that came up this slot (spec.md §4.5): a dedicated shared
// cell decrements only its target neighbor; a broadcast shared cell
// decrements every neighbor that has no dedicated TX cell of its own.
func (n *Node) DecrementSharedCellBackoffs(c *Cell) {
	if !c.IsShared() {
		return
	}
	if c.NeighborID() != BroadcastNeighborID {
		if nb, ok := n.Neighbors[c.NeighborID()]; ok {
			nb.DecrementBackoffWindow()
		}
		return
	}
	for _, nb := range n.Neighbors {
		if nb.ID() == BroadcastNeighborID || nb.ID() == EBNeighborID {
			continue
		}
		if nb.DedicatedTxCells == 0 {
			nb.DecrementBackoffWindow()
		}
	}
}

// RecordTxOutcome updates the target neighbor's CSMA and ETX state after
// one transmission attempt completes (spec.md §4.5). ackRequired/acked
// describe the attempt this call observed; it is a no-op for EB/broadcast
// selections, which carry no single target neighbor.
func (n *Node) RecordTxOutcome(sel TxSelection, ackRequired, acked bool) {
	if sel.Packet == nil || sel.Packet.Neighbor == nil {
		return
	}
	nb := sel.Packet.Neighbor
	if sel.Cell != nil && sel.Cell.IsShared() {
		nb.OnSharedCellOutcome(acked, n.Config, n.Rng)
	}
	if ackRequired {
		nb.OnTxOutcome(acked, sel.Packet.P.NumTransmissions, n.Config, n.Timeline.Seconds())
	}
}

// FinishTransmission pops sel's packet from its owning queue and fires its
// sent callback once the attempt is resolved: either it was ACKed, or it
// has exhausted MAC_MAX_RETRIES (spec.md §4.4 Phase D). Otherwise it is
// left queued for the next eligible cell.
func (n *Node) FinishTransmission(sel TxSelection, acked bool) {
	if sel.Packet == nil {
		return
	}
	p := sel.Packet.P
	if !acked && p.NumTransmissions < n.Config.MaxRetries+1 {
		return
	}
	if sel.Packet.FromEB() {
		n.ebQueue.Remove(p)
	} else if sel.Packet.Neighbor != nil {
		sel.Packet.Neighbor.Queue.Remove(p)
	}
	p.Complete(acked)
}
