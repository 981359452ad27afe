package network

import (
	"testing"

	"go.uber.org/zap"

	"github.com/tschsim/engine/internal/config"
	"github.com/tschsim/engine/internal/linkmodel"
)

func testNetwork(t *testing.T) *Network {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = 1
	return New(&cfg, zap.NewNop(), nil, nil)
}

func TestAddNodeRegistersInInsertionOrder(t *testing.T) {
	net := testNetwork(t)
	net.AddNode(3, linkmodel.Position{}, false)
	net.AddNode(1, linkmodel.Position{}, false)

	if len(net.Nodes) != 2 || net.Nodes[0].ID() != 3 || net.Nodes[1].ID() != 1 {
		t.Fatalf("expected insertion-ordered nodes [3,1], got %+v", net.Nodes)
	}
}

func TestAddLinkIndexesOnSendingNode(t *testing.T) {
	net := testNetwork(t)
	a := net.AddNode(1, linkmodel.Position{}, false)
	net.AddNode(2, linkmodel.Position{}, false)

	net.AddLink(1, 2, &linkmodel.Fixed{SuccessRate: 1})

	if _, ok := a.Links[2]; !ok {
		t.Fatal("expected the link to be indexed on the sending node")
	}
	if _, ok := net.Link(1, 2); !ok {
		t.Fatal("expected Link(1,2) to find the registered link")
	}
	if _, ok := net.Link(2, 1); ok {
		t.Fatal("a link is directed; the reverse direction must not exist")
	}
}

func TestInitializeJoinsCoordinatorAndArmsFreshnessTimer(t *testing.T) {
	net := testNetwork(t)
	net.AddNode(1, linkmodel.Position{}, true)

	net.Initialize()

	root, _ := net.Node(1)
	if !root.HasJoined {
		t.Fatal("coordinator should be joined after Initialize")
	}
	if net.freshnessTimer == 0 {
		t.Fatal("expected the network-wide freshness-halving timer to be armed")
	}
}

func TestOnFreshnessHalvingHalvesEveryNeighborOnEveryNode(t *testing.T) {
	net := testNetwork(t)
	root := net.AddNode(1, linkmodel.Position{}, true)
	nb := root.Neighbor(2)
	nb.Freshness = 10

	net.onFreshnessHalving()

	if nb.Freshness != 5 {
		t.Fatalf("freshness = %d, want 5 after halving", nb.Freshness)
	}
}

func TestScriptHookFiresOnRegisteredASN(t *testing.T) {
	net := testNetwork(t)
	fired := false
	net.Hooks.Register(3, func(*Network) { fired = true })

	for i := 0; i < 3; i++ {
		net.Timeline.Step()
		net.Hooks.fire(net, net.Timeline.ASN())
	}

	if !fired {
		t.Fatal("expected the hook registered for asn=3 to have fired")
	}
	if net.Hooks.Pending() != 0 {
		t.Fatal("expected the fired hook to be removed from the registry")
	}
}
