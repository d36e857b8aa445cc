package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sevenpm/date-backend/internal/db"
)

// IntentRepository provides data access methods for the CleanupIntent model,
// the write-ahead record for the purge sequence. A pending intent that never
// reached "done" marks a purge interrupted by a crash.
type IntentRepository struct {
	db *gorm.DB
}

// NewIntentRepository creates a new repository bound to the given DB connection.
func NewIntentRepository(database *gorm.DB) *IntentRepository {
	return &IntentRepository{db: database}
}

// MarkPending records intent to purge the session before any delete runs.
func (r *IntentRepository) MarkPending(ctx context.Context, sessionID string) error {
	intent := db.CleanupIntent{SessionID: sessionID, State: db.IntentPending}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
		}).
		Create(&intent).Error
}

// MarkDone closes the intent once every destructive step has completed.
func (r *IntentRepository) MarkDone(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&db.CleanupIntent{}).
		Where("session_id = ?", sessionID).
		Update("state", db.IntentDone).Error
}

// ListPending returns intents whose purge never completed.
func (r *IntentRepository) ListPending(ctx context.Context) ([]db.CleanupIntent, error) {
	var intents []db.CleanupIntent
	err := r.db.WithContext(ctx).
		Where("state = ?", db.IntentPending).
		Find(&intents).Error
	return intents, err
}
