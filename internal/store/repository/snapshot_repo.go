// Package repository wraps gorm queries over internal/store/models, mirroring
// the teacher's backend/repository layer (one *gorm.DB-backed repo type per
// table, context-scoped methods).
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tschsim/engine/internal/store/models"
)

// SnapshotRepo persists and queries RunStatSnapshot rows.
type SnapshotRepo struct {
	db *gorm.DB
}

// NewSnapshotRepo builds a SnapshotRepo and runs its auto-migration,
// matching the teacher's database.Migrate discipline of creating tables
// on repo construction rather than a separate migration step.
func NewSnapshotRepo(db *gorm.DB) (*SnapshotRepo, error) {
	if err := db.AutoMigrate(&models.RunStatSnapshot{}); err != nil {
		return nil, err
	}
	return &SnapshotRepo{db: db}, nil
}

// Insert persists one tally interval's snapshot rows for a run.
func (r *SnapshotRepo) Insert(ctx context.Context, rows []models.RunStatSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// LatestByRun returns the most recently recorded snapshot for each node in
// runID, ordered by node ID.
func (r *SnapshotRepo) LatestByRun(ctx context.Context, runID string) ([]models.RunStatSnapshot, error) {
	var latestIDs []int64
	sub := r.db.WithContext(ctx).Model(&models.RunStatSnapshot{}).
		Select("MAX(id)").
		Where("run_id = ?", runID).
		Group("node_id")
	if err := sub.Scan(&latestIDs).Error; err != nil {
		return nil, err
	}
	if len(latestIDs) == 0 {
		return nil, nil
	}
	var out []models.RunStatSnapshot
	err := r.db.WithContext(ctx).Where("id IN ?", latestIDs).Order("node_id").Find(&out).Error
	return out, err
}

// CountForRun returns how many snapshot rows have been recorded for runID.
func (r *SnapshotRepo) CountForRun(ctx context.Context, runID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.RunStatSnapshot{}).Where("run_id = ?", runID).Count(&n).Error
	return n, err
}
