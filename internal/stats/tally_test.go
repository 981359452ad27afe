package stats

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tschsim/engine/internal/config"
	"github.com/tschsim/engine/internal/linkmodel"
	"github.com/tschsim/engine/internal/network"
	"github.com/tschsim/engine/internal/store/repository"
)

func TestTallyPersistsOneRowPerNode(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	repo, err := repository.NewSnapshotRepo(db)
	if err != nil {
		t.Fatalf("NewSnapshotRepo: %v", err)
	}

	cfg := config.Default()
	net := network.New(&cfg, zap.NewNop(), nil, nil)
	net.AddNode(1, linkmodel.Position{}, true)
	net.AddNode(2, linkmodel.Position{}, false)

	svc := New(net, repo, "run-abc", time.Hour, zap.NewNop())
	var gotSummary Summary
	svc.OnTallyComplete = func(s Summary) { gotSummary = s }
	svc.tally()

	n, err := repo.CountForRun(context.Background(), "run-abc")
	if err != nil {
		t.Fatalf("CountForRun: %v", err)
	}
	if n != 2 {
		t.Fatalf("CountForRun = %d, want 2", n)
	}
	if gotSummary.NodesTallied != 2 {
		t.Fatalf("gotSummary.NodesTallied = %d, want 2", gotSummary.NodesTallied)
	}
}

func TestHeadlinePluralizesCorrectly(t *testing.T) {
	if got := Headline(1, 0, 0); got != "1 node, 0 collisions, 0 deliveries" {
		t.Fatalf("Headline(1,0,0) = %q", got)
	}
	if got := Headline(3, 1, 1); got != "3 nodes, 1 collision, 1 delivery" {
		t.Fatalf("Headline(3,1,1) = %q", got)
	}
}
