package node

import (
	"testing"

	"github.com/tschsim/engine/internal/packet"
	"github.com/tschsim/engine/internal/plugin"
)

func TestInitializeCoordinatorJoinsImmediately(t *testing.T) {
	n := newTestNode(t, 1)
	n.IsCoordinator = true
	n.Scheduler = plugin.PassThroughScheduler{}
	n.Routing = plugin.NullRoutingState{}

	n.Initialize()

	if !n.HasJoined {
		t.Fatal("coordinator should be joined immediately")
	}
	if n.AssocState != StateJoined {
		t.Fatalf("assoc state = %v, want JOINED", n.AssocState)
	}
	if n.ebTimer == 0 {
		t.Fatal("expected coordinator to arm its EB timer on initialize")
	}
}

func TestInitializeLeafStartsScanning(t *testing.T) {
	n := newTestNode(t, 2)
	n.Initialize()

	if n.HasJoined {
		t.Fatal("a non-coordinator should not be joined at initialize")
	}
	if n.scanTimer == 0 {
		t.Fatal("expected scan timer to be armed")
	}
}

func TestRecordDropCompletesPacketAndIncrementsCounter(t *testing.T) {
	n := newTestNode(t, 1)
	p := packet.New(1, 2, 1, 10, 2)
	fired := false
	p.SentCallback = func(ok bool) { fired = ok == false }

	n.RecordDrop(DropQueueFull, p)

	if n.Stats.AppNumQueueDrops != 1 {
		t.Fatalf("AppNumQueueDrops = %d, want 1", n.Stats.AppNumQueueDrops)
	}
	if !fired {
		t.Fatal("expected sent callback to fire with ok=false")
	}
}

func TestNeighborLazilyCreatesAndReuses(t *testing.T) {
	n := newTestNode(t, 1)
	a := n.Neighbor(5)
	b := n.Neighbor(5)
	if a != b {
		t.Fatal("expected the same Neighbor instance to be returned for a repeated ID")
	}
}
