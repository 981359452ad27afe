// Package packet implements the link-layer packet record, per-neighbor
// bounded queues, and application-layer fragmentation/reassembly
// described in spec.md §3, §4.7.
package packet

import "github.com/google/uuid"

// BroadcastNeighborID is the sentinel destination/next-hop ID meaning
// "every neighbor on this cell", distinct from any real node ID (which
// spec.md §3 requires to be positive).
const BroadcastNeighborID = 0

// FrameType classifies a packet for link-layer handling (EB association,
// data delivery, etc.).
type FrameType int

const (
	FrameData FrameType = iota
	FrameACK
	FrameEB
)

// Attributes is the small fixed struct of optional pinning fields that
// replaces the original source's dynamic packetbuf attribute dictionary
// (spec.md §9 Design Notes): a scheduler pins a packet to a specific
// slotframe/timeslot/channel-offset by setting the matching Has* flag.
type Attributes struct {
	SlotframeHandle     int
	HasSlotframePin     bool
	Timeslot            int
	HasTimeslotPin      bool
	ChannelOffset       int
	HasChannelOffsetPin bool
	FrameType           FrameType
	JoinPriority        int
	HasJoinPriority     bool
}

// Fragment describes one application-layer fragment's position within its
// reassembly set.
type Fragment struct {
	Tag   uint32
	Index int
	Total int
}

// ReceiveRecord is one candidate receiver's outcome for a single
// transmission attempt, keyed by receiver ID on Packet.Receivers.
type ReceiveRecord struct {
	RSSI      float64
	RxSuccess bool
}

// Packet is the end-to-end + link-layer packet record. SentCallback, when
// set, fires exactly once: on ACK, on TX-limit exhaustion, or on any
// runtime drop (spec.md §7.3).
type Packet struct {
	SourceNodeID  int
	DestinationID int
	SeqNum        uint32
	AppLength     int

	LastHopID        int
	NextHopID        int
	LinkSeqNum       uint32
	NumTransmissions int
	IsAckRequired    bool

	Attrs    Attributes
	Fragment *Fragment

	Receivers map[int]*ReceiveRecord

	// TraceID correlates this end-to-end packet (and every fragment split
	// from it) across logs and the driver's websocket broadcast; it plays
	// no role in the reassembly key, which stays the numeric
	// (SourceNodeID, Fragment.Tag) pair spec.md §4.7 describes.
	TraceID uuid.UUID

	SentCallback func(ok bool)
}

// New builds a Packet and derives IsAckRequired from nextHopID, enforcing
// the invariant in spec.md §3: is_ack_required ⇔ next-hop > 0 ∧ next-hop
// ≠ broadcast.
func New(sourceID, destinationID int, seq uint32, appLength, nextHopID int) *Packet {
	return &Packet{
		SourceNodeID:  sourceID,
		DestinationID: destinationID,
		SeqNum:        seq,
		AppLength:     appLength,
		NextHopID:     nextHopID,
		IsAckRequired: nextHopID > 0 && nextHopID != BroadcastNeighborID,
		Receivers:     make(map[int]*ReceiveRecord),
		TraceID:       uuid.New(),
	}
}

// RecordAttempt notes one transmission attempt's outcome for a candidate
// receiver.
func (p *Packet) RecordAttempt(receiverID int, rssi float64, ok bool) {
	if p.Receivers == nil {
		p.Receivers = make(map[int]*ReceiveRecord)
	}
	p.Receivers[receiverID] = &ReceiveRecord{RSSI: rssi, RxSuccess: ok}
}

// NextHopSucceeded reports whether the packet's pinned next hop was
// recorded as a successful receiver on the most recent attempt.
func (p *Packet) NextHopSucceeded() bool {
	rec, ok := p.Receivers[p.NextHopID]
	return ok && rec.RxSuccess
}

// fireSent invokes the sent callback exactly once, if set.
func (p *Packet) fireSent(ok bool) {
	if p.SentCallback != nil {
		cb := p.SentCallback
		p.SentCallback = nil
		cb(ok)
	}
}

// Complete finalizes the packet's lifecycle (ACKed, TX-limit exceeded, or
// dropped) and fires the sent callback.
func (p *Packet) Complete(ok bool) {
	p.fireSent(ok)
}
