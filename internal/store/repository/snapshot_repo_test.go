package repository

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tschsim/engine/internal/store/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	return db
}

func TestInsertAndLatestByRun(t *testing.T) {
	repo, err := NewSnapshotRepo(openTestDB(t))
	if err != nil {
		t.Fatalf("NewSnapshotRepo: %v", err)
	}
	ctx := context.Background()

	err = repo.Insert(ctx, []models.RunStatSnapshot{
		{RunID: "run-1", NodeID: 1, ASN: 10, AppNumEndpointRx: 2},
		{RunID: "run-1", NodeID: 2, ASN: 10, AppNumEndpointRx: 1},
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err = repo.Insert(ctx, []models.RunStatSnapshot{
		{RunID: "run-1", NodeID: 1, ASN: 20, AppNumEndpointRx: 5},
	})
	if err != nil {
		t.Fatalf("Insert (second interval): %v", err)
	}

	latest, err := repo.LatestByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("LatestByRun: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("len(latest) = %d, want 2 (one per node)", len(latest))
	}
	if latest[0].NodeID != 1 || latest[0].AppNumEndpointRx != 5 {
		t.Fatalf("expected node 1's latest row (asn 20, rx 5), got %+v", latest[0])
	}

	n, err := repo.CountForRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("CountForRun: %v", err)
	}
	if n != 3 {
		t.Fatalf("CountForRun = %d, want 3", n)
	}
}

func TestInsertEmptyIsNoop(t *testing.T) {
	repo, err := NewSnapshotRepo(openTestDB(t))
	if err != nil {
		t.Fatalf("NewSnapshotRepo: %v", err)
	}
	if err := repo.Insert(context.Background(), nil); err != nil {
		t.Fatalf("Insert(nil): %v", err)
	}
}
