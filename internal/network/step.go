package network

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/tschsim/engine/internal/config"
	"github.com/tschsim/engine/internal/linkmodel"
	"github.com/tschsim/engine/internal/node"
	"github.com/tschsim/engine/internal/packet"
)

// channelFor maps a cell's channel offset to a physical channel for the
// given ASN via the configured hopping sequence (spec.md §3's "hopping-
// sequence index" dynamic state, generalized into a pure function of
// (offset, asn) since every cell on a node shares the same sequence).
func channelFor(cfg *config.Config, asn uint64, offset int) int {
	seq := cfg.HoppingSequence
	if len(seq) == 0 {
		return offset
	}
	idx := (offset + int(asn)) % len(seq)
	if idx < 0 {
		idx += len(seq)
	}
	return seq[idx]
}

// receiverBuckets holds one candidate receiver's in-flight rx_ok/rx_failed
// lists for the subslot range of one step (spec.md §4.4 Phase B/C).
type receiverBuckets struct {
	ok     [][]rxAttempt
	failed [][]rxAttempt
}

func newReceiverBuckets(maxSubslots int) *receiverBuckets {
	if maxSubslots < 1 {
		maxSubslots = 1
	}
	return &receiverBuckets{ok: make([][]rxAttempt, maxSubslots), failed: make([][]rxAttempt, maxSubslots)}
}

// Step advances the Timeline by one slot and runs the four strictly
// ordered phases over the node population (spec.md §4.4): decide,
// transmit, resolve reception, ACK. Non-fatal per-phase anomalies are
// aggregated via multierr rather than interrupting the phase loop; the
// core never unwinds across the step boundary (spec.md §5).
func (net *Network) Step() error {
	net.Timeline.Step()
	asn := net.Timeline.ASN()

	for _, l := range net.links {
		if adv, ok := l.Model.(linkmodel.Advancer); ok {
			adv.Advance(net.Timeline.Seconds())
		}
	}

	var errs error

	type txEntry struct {
		n       *node.Node
		sel     node.TxSelection
		channel int
	}

	statuses := make([]NodeStatus, 0, len(net.Nodes))
	var txEntries []txEntry
	rxChannel := make(map[int]int)
	buckets := make(map[int]*receiverBuckets)

	// Phase A: decide.
	for _, n := range net.Nodes {
		sel := n.Schedule(asn)
		status := NodeStatus{NodeID: n.ID(), Decision: sel.Decision}

		switch sel.Decision {
		case node.DecisionTX:
			ch := channelFor(net.Config, asn, sel.Cell.ChannelOffset())
			status.Channel, status.Timeslot, status.ChannelOffset = ch, sel.Cell.Timeslot(), sel.Cell.ChannelOffset()
			txEntries = append(txEntries, txEntry{n: n, sel: sel, channel: ch})
		case node.DecisionRX:
			ch := channelFor(net.Config, asn, sel.Cell.ChannelOffset())
			status.Channel, status.Timeslot, status.ChannelOffset = ch, sel.Cell.Timeslot(), sel.Cell.ChannelOffset()
			rxChannel[n.ID()] = ch
			buckets[n.ID()] = newReceiverBuckets(net.Config.MaxSubslots)
		}
		if sel.Cell != nil {
			n.DecrementSharedCellBackoffs(sel.Cell)
		}
		statuses = append(statuses, status)
	}
	net.lastStatuses = statuses

	txSet := make(map[int]bool, len(txEntries))
	for _, e := range txEntries {
		txSet[e.n.ID()] = true
	}

	// Phase B: transmit.
	for _, e := range txEntries {
		if e.sel.Packet == nil {
			// schedule() should never return DecisionTX without a packet;
			// treated as a recoverable per-slot anomaly rather than a
			// fatal error so one misbehaving node can't halt the step.
			errs = multierr.Append(errs, fmt.Errorf("network: node %d's TX decision at asn %d carried no packet", e.n.ID(), asn))
			continue
		}
		p := e.sel.Packet.P
		p.LastHopID = e.n.ID()
		p.NumTransmissions++
		p.Receivers = make(map[int]*packet.ReceiveRecord)

		for toID, link := range e.n.Links {
			if !link.IsActive || txSet[toID] {
				continue
			}
			bucket, receiving := buckets[toID]
			if !receiving || rxChannel[toID] != e.channel {
				continue
			}
			ok := link.TrySend(net.Rng, e.channel)
			rssi := link.LastRSSI()
			p.RecordAttempt(toID, rssi, ok)

			attempt := rxAttempt{pkt: p, fromID: e.n.ID(), rssi: rssi}
			if ok {
				bucket.ok[0] = append(bucket.ok[0], attempt)
			} else {
				bucket.failed[0] = append(bucket.failed[0], attempt)
			}
		}
	}

	// Phase C: resolve reception.
	for toID, bucket := range buckets {
		rxNode := net.nodeIndex[toID]
		for subslot := 0; subslot < net.Config.MaxSubslots; subslot++ {
			winner, collisions, _ := resolveCapture(bucket.ok[subslot], bucket.failed[subslot], net.Config)
			rxNode.Stats.MacRxCollision += len(collisions)
			if winner != nil {
				rxNode.Receive(winner.pkt)
			}
		}
	}

	// Phase D: ACK.
	for _, e := range txEntries {
		if e.sel.Packet == nil {
			continue
		}
		p := e.sel.Packet.P
		acked := false

		if p.IsAckRequired {
			if rec, delivered := p.Receivers[p.NextHopID]; delivered && rec.RxSuccess {
				if revLink, ok := net.links[linkKey{from: p.NextHopID, to: e.n.ID()}]; ok {
					acked = revLink.TrySend(net.Rng, e.channel)
				}
			}
			e.n.Stats.MacTxUnicast++
			if acked {
				e.n.Stats.MacAcked++
			}
			e.n.RecordTxOutcome(e.sel, true, acked)
		} else {
			acked = true // broadcast/EB frames need no ACK to retire after one attempt.
		}

		if e.n.Scheduler != nil {
			e.n.Scheduler.OnTx(e.n, p, acked)
		}
		if e.n.Routing != nil {
			nb := e.n.Neighbor(p.NextHopID)
			e.n.Routing.OnTx(nb, p, acked, p.IsAckRequired, e.sel.Cell)
		}

		e.n.FinishTransmission(e.sel, acked)
	}

	net.Hooks.fire(net, asn)

	return multierr.Combine(errs)
}
