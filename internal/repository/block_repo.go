package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sevenpm/date-backend/internal/db"
)

// BlockRepository provides data access methods for the BlockedUser model.
// Blocks are private to the blocking user and expire by timestamp
// comparison only; nothing ever deletes an expired row.
type BlockRepository struct {
	db *gorm.DB
}

// NewBlockRepository creates a new repository bound to the given DB connection.
func NewBlockRepository(database *gorm.DB) *BlockRepository {
	return &BlockRepository{db: database}
}

// Upsert records (or refreshes) a block of blockedID by blockerID.
//
// Behavior:
//   - Composite PK (blocker_id, blocked_id) → a re-block overwrites the
//     expiry instead of stacking rows.
func (r *BlockRepository) Upsert(ctx context.Context, blockerID, blockedID string, expiresAt time.Time) error {
	block := db.BlockedUser{
		BlockerID: blockerID,
		BlockedID: blockedID,
		ExpiresAt: expiresAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "blocker_id"}, {Name: "blocked_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"expires_at"}),
		}).
		Create(&block).Error
}

// ActiveBlockedIDs returns the ids blocked by blockerID whose cooldown has
// not yet elapsed at the given instant.
func (r *BlockRepository) ActiveBlockedIDs(ctx context.Context, blockerID string, now time.Time) (map[string]bool, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&db.BlockedUser{}).
		Where("blocker_id = ? AND expires_at > ?", blockerID, now).
		Pluck("blocked_id", &ids).Error
	if err != nil {
		return nil, err
	}
	blocked := make(map[string]bool, len(ids))
	for _, id := range ids {
		blocked[id] = true
	}
	return blocked, nil
}

// IsBlocked reports whether candidateID is currently blocked by blockerID.
func (r *BlockRepository) IsBlocked(ctx context.Context, blockerID, candidateID string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.BlockedUser{}).
		Where("blocker_id = ? AND blocked_id = ? AND expires_at > ?", blockerID, candidateID, now).
		Count(&count).Error
	return count > 0, err
}

// ListActive returns the caller's active blocks, soonest-expiring first.
func (r *BlockRepository) ListActive(ctx context.Context, blockerID string, now time.Time) ([]db.BlockedUser, error) {
	var blocks []db.BlockedUser
	err := r.db.WithContext(ctx).
		Where("blocker_id = ? AND expires_at > ?", blockerID, now).
		Order("expires_at ASC").
		Find(&blocks).Error
	return blocks, err
}
