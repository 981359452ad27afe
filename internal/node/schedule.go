package node

import "github.com/tschsim/engine/internal/packet"

// TxSelection is schedule()'s side-effect output: the cell chosen for
// this slot and, if Decision is TX, the packet pinned to it.
type TxSelection struct {
	Decision Decision
	Cell     *Cell
	Slotframe *Slotframe
	Packet   *Packet
}

// Packet is the node-layer view of a queued packet, pairing the raw
// packet record with the neighbor queue it currently lives on (so
// schedule() can pop it from the right place once chosen).
type Packet struct {
	P        *packet.Packet
	Neighbor *Neighbor // nil for the EB virtual queue
	fromEB   bool
}

// FromEB reports whether this selection came from the EB virtual-neighbor
// queue rather than a real neighbor's queue (internal/network's Phase D
// needs this to know which queue to pop from on completion).
func (p *Packet) FromEB() bool { return p.fromEB }

// Schedule runs the per-slot decision algorithm (spec.md §4.3) and
// returns the Decision plus any cell/packet it selected. Callers
// (internal/network Phase A) are responsible for acting on the result.
func (n *Node) Schedule(asn uint64) TxSelection {
	if n.skipSlots > 0 {
		n.skipSlots--
		return TxSelection{Decision: DecisionSleep}
	}

	if !n.HasJoined && !n.IsCoordinator {
		return TxSelection{Decision: DecisionScan}
	}

	var primary, backup *Cell
	var primarySF, backupSF *Slotframe
	minTimeToSlot := -1

	for _, sf := range n.Slotframes {
		for _, c := range sf.Cells() {
			ttt := sf.TimeToTimeslot(asn, c)
			if minTimeToSlot < 0 || ttt < minTimeToSlot {
				minTimeToSlot = ttt
			}
			if ttt != 0 {
				continue
			}

			c.RunHook(n)

			if primary == nil {
				primary = c
				primarySF = sf
				continue
			}
			if primary.IsTX() && !c.IsTX() {
				// primary already the preferred TX cell; consider c for backup below
			} else if c.IsTX() && !primary.IsTX() {
				backup, backupSF = demoteToBackup(primary, primarySF, backup, backupSF)
				primary, primarySF = c, sf
				continue
			} else if selectBestTSCHCell(primary, c) == c {
				backup, backupSF = demoteToBackup(primary, primarySF, backup, backupSF)
				primary, primarySF = c, sf
				continue
			}
			if c.IsRX() {
				backup, backupSF = considerBackup(backup, backupSF, c, sf)
			}
		}
	}
	n.skipSlots = minTimeToSlot - 1
	if n.skipSlots < 0 {
		n.skipSlots = 0
	}
	n.backupCell, n.backupSF = backup, backupSF

	if primary == nil {
		return TxSelection{Decision: DecisionSleep}
	}

	var chosenPacket *Packet
	if primary.IsTX() {
		chosenPacket = n.packetForTxCell(primary)
	}

	if chosenPacket == nil && backup != nil && backup.IsRX() {
		if !primary.IsRX() || (backupSF != nil && primarySF != nil && backupSF.Handle < primarySF.Handle) {
			primary, primarySF = backup, backupSF
		}
	}

	if chosenPacket != nil {
		return TxSelection{Decision: DecisionTX, Cell: primary, Slotframe: primarySF, Packet: chosenPacket}
	}
	if primary.IsRX() {
		return TxSelection{Decision: DecisionRX, Cell: primary, Slotframe: primarySF}
	}
	// primary is a TX-only cell with nothing eligible to send (e.g. an
	// empty or backoff-blocked shared cell): still report it so the
	// caller can run the shared-cell backoff countdown for this slot.
	return TxSelection{Decision: DecisionSleep, Cell: primary, Slotframe: primarySF}
}

// demoteToBackup considers the cell being displaced from primary as a
// backup candidate before a new primary takes its place.
func demoteToBackup(oldPrimary *Cell, oldSF *Slotframe, backup *Cell, backupSF *Slotframe) (*Cell, *Slotframe) {
	if oldPrimary != nil && oldPrimary.IsRX() {
		return considerBackup(backup, backupSF, oldPrimary, oldSF)
	}
	return backup, backupSF
}

// considerBackup keeps the best RX-capable backup candidate, preferring
// the smaller slotframe handle (spec.md §4.3 step 3).
func considerBackup(backup *Cell, backupSF *Slotframe, candidate *Cell, candidateSF *Slotframe) (*Cell, *Slotframe) {
	if !candidate.IsRX() {
		return backup, backupSF
	}
	if backup == nil {
		return candidate, candidateSF
	}
	if candidateSF != nil && backupSF != nil && candidateSF.Handle < backupSF.Handle {
		return candidate, candidateSF
	}
	return backup, backupSF
}

// selectBestTSCHCell breaks a tie between two simultaneously-eligible
// cells with the same TX/RX option. Absent a richer scheduler-supplied
// tiebreaker, the lower channel offset wins (a on equal offsets), giving
// a deterministic, reproducible choice.
func selectBestTSCHCell(a, b *Cell) *Cell {
	if a.ChannelOffset() <= b.ChannelOffset() {
		return a
	}
	return b
}

// packetForTxCell implements get_packet_for_tx_cell (spec.md §4.3 step 4).
func (n *Node) packetForTxCell(c *Cell) *Packet {
	if c.IsAdvertising() {
		if p := n.ebQueue.Peek(); p != nil {
			return &Packet{P: p, fromEB: true}
		}
	}

	if c.NeighborID() != BroadcastNeighborID {
		nb := n.Neighbor(c.NeighborID())
		if c.IsShared() && nb.BackoffWindow != 0 {
			return nil
		}
		if p := nb.Queue.PeekMatching(pinnedFor(n.slotframeOf(c), c)); p != nil {
			return &Packet{P: p, Neighbor: nb}
		}
		return nil
	}

	for _, nb := range n.Neighbors {
		if nb.ID() == BroadcastNeighborID || nb.ID() == EBNeighborID {
			continue
		}
		if c.IsShared() && nb.BackoffWindow != 0 {
			continue
		}
		if p := nb.Queue.PeekMatching(pinnedFor(n.slotframeOf(c), c)); p != nil {
			return &Packet{P: p, Neighbor: nb}
		}
	}
	return nil
}

// slotframeOf finds the slotframe owning c, for pin-matching against
// HasSlotframePin.
func (n *Node) slotframeOf(c *Cell) *Slotframe {
	for _, sf := range n.Slotframes {
		if _, ok := sf.CellAt(c.Timeslot(), c.ChannelOffset()); ok {
			return sf
		}
	}
	return nil
}

// pinnedFor returns a predicate matching packets whose optional
// slotframe/timeslot/channel-offset pins (if set) agree with sf/c.
func pinnedFor(sf *Slotframe, c *Cell) func(*packet.Packet) bool {
	return func(p *packet.Packet) bool {
		if p.Attrs.HasSlotframePin && (sf == nil || p.Attrs.SlotframeHandle != sf.Handle) {
			return false
		}
		if p.Attrs.HasTimeslotPin && p.Attrs.Timeslot != c.Timeslot() {
			return false
		}
		if p.Attrs.HasChannelOffsetPin && p.Attrs.ChannelOffset != c.ChannelOffset() {
			return false
		}
		return true
	}
}
