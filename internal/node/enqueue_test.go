package node

import (
	"testing"

	"github.com/tschsim/engine/internal/packet"
)

func TestEnqueueFragmentsOversizedPacket(t *testing.T) {
	n := newTestNode(t, 1)
	n.Config.MaxPacketSize = 10
	p := packet.New(1, 2, 1, 25, 2)

	n.Enqueue(p)

	nb := n.Neighbor(2)
	if nb.Queue.Len() != 3 {
		t.Fatalf("queue length = %d, want 3 fragments (25 bytes / 10-byte MTU)", nb.Queue.Len())
	}
}

func TestEnqueueRoutesEBFramesToEBQueue(t *testing.T) {
	n := newTestNode(t, 1)
	p := packet.New(1, 0, 1, 10, 0)
	p.Attrs.FrameType = packet.FrameEB

	n.Enqueue(p)

	if n.ebQueue.Len() != 1 {
		t.Fatalf("ebQueue length = %d, want 1", n.ebQueue.Len())
	}
}

func TestEnqueueDropsOversizedPacketWhenFragmentationDisabled(t *testing.T) {
	n := newTestNode(t, 1)
	n.Config.FragmentationEnabled = false
	n.Config.MaxPacketSize = 10
	p := packet.New(1, 2, 1, 25, 2)
	dropped := false
	p.SentCallback = func(ok bool) { dropped = !ok }

	n.Enqueue(p)

	if n.Stats.AppNumOtherDrops != 1 {
		t.Fatalf("AppNumOtherDrops = %d, want 1", n.Stats.AppNumOtherDrops)
	}
	if !dropped {
		t.Fatal("expected the oversized packet's sent callback to fire with ok=false")
	}
	if nb, ok := n.Neighbors[2]; ok && nb.Queue.Len() != 0 {
		t.Fatal("the oversized packet must not reach the neighbor queue")
	}
}

func TestEnqueueRejectedByScheduler(t *testing.T) {
	n := newTestNode(t, 1)
	n.Scheduler = &recordingScheduler{acceptPacketReady: false}
	p := packet.New(1, 2, 1, 10, 2)

	n.Enqueue(p)

	if n.Stats.SchedulingDrops != 1 {
		t.Fatalf("SchedulingDrops = %d, want 1", n.Stats.SchedulingDrops)
	}
	if nb := n.Neighbor(2); nb.Queue.Len() != 0 {
		t.Fatal("a scheduler-rejected packet must not reach the neighbor queue")
	}
}

func TestEnqueueDropsOnFullQueue(t *testing.T) {
	n := newTestNode(t, 1)
	n.Config.QueueSize = 1
	n.Config.FragmentationEnabled = false

	nb := n.Neighbor(2)
	nb.Queue = packet.NewQueue(1)

	first := packet.New(1, 2, 1, 10, 2)
	second := packet.New(1, 2, 2, 10, 2)
	dropped := false
	second.SentCallback = func(ok bool) { dropped = !ok }

	n.Enqueue(first)
	n.Enqueue(second)

	if n.Stats.AppNumQueueDrops != 1 {
		t.Fatalf("AppNumQueueDrops = %d, want 1", n.Stats.AppNumQueueDrops)
	}
	if !dropped {
		t.Fatal("expected the overflowing packet's sent callback to fire with ok=false")
	}
}

func TestSeenLinkLayerSeqnumSuppressesRepeat(t *testing.T) {
	n := newTestNode(t, 1)
	if n.seenLinkLayerSeqnum(5, 1) {
		t.Fatal("first sighting must not be reported as a duplicate")
	}
	if !n.seenLinkLayerSeqnum(5, 1) {
		t.Fatal("repeat sighting from the same last hop must be suppressed")
	}
	if n.seenLinkLayerSeqnum(6, 1) {
		t.Fatal("the same seqnum from a different last hop is not a duplicate")
	}
}

func TestSeenLinkLayerSeqnumRingIsBounded(t *testing.T) {
	n := newTestNode(t, 1)
	n.Config.NumRecentLinkLayerSeqnums = 2

	n.seenLinkLayerSeqnum(5, 1)
	n.seenLinkLayerSeqnum(5, 2)
	n.seenLinkLayerSeqnum(5, 3) // evicts seqnum 1 from the ring

	if n.seenLinkLayerSeqnum(5, 1) {
		t.Fatal("seqnum 1 should have aged out of the bounded ring")
	}
	if !n.seenLinkLayerSeqnum(5, 3) {
		t.Fatal("seqnum 3 should still be remembered")
	}
}

func TestReceiveCountsOneDeliveryPerEndToEndPacket(t *testing.T) {
	n := newTestNode(t, 2)
	p := packet.New(1, 2, 7, 10, 2)
	p.LastHopID = 1
	p.LinkSeqNum = 100

	n.Receive(p)
	if n.Stats.AppNumEndpointRx != 1 {
		t.Fatalf("AppNumEndpointRx = %d, want 1", n.Stats.AppNumEndpointRx)
	}

	// A link-layer retransmission of the same frame must not double-count.
	n.Receive(p)
	if n.Stats.AppNumEndpointRx != 1 {
		t.Fatalf("AppNumEndpointRx after retransmission = %d, want still 1", n.Stats.AppNumEndpointRx)
	}
}

func TestReceiveSuppressesEndToEndDuplicateFromDifferentPath(t *testing.T) {
	n := newTestNode(t, 2)
	first := packet.New(1, 2, 7, 10, 2)
	first.LastHopID = 1
	first.LinkSeqNum = 100

	second := packet.New(1, 2, 7, 10, 2) // same source/seq, arrived via a different last hop
	second.LastHopID = 3
	second.LinkSeqNum = 200

	n.Receive(first)
	n.Receive(second)

	if n.Stats.AppNumEndpointRx != 1 {
		t.Fatalf("AppNumEndpointRx = %d, want 1 (end-to-end duplicate via a different path)", n.Stats.AppNumEndpointRx)
	}
}
