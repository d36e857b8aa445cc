package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sevenpm/date-backend/internal/db"
)

// DecisionRepository provides data access methods for the Decision model.
// It encapsulates all queries related to accept/reject verdicts on sessions.
type DecisionRepository struct {
	db *gorm.DB
}

// NewDecisionRepository creates a new repository bound to the given DB connection.
func NewDecisionRepository(database *gorm.DB) *DecisionRepository {
	return &DecisionRepository{db: database}
}

// CreateDecision records a user's verdict for a session.
//
// Behavior:
//   - If no (session_id, user_id) row exists → a new row is inserted.
//   - If one exists → the write is a no-op (first decision wins). The
//     composite PK makes a duplicate decision impossible by construction.
//
// Example:
//
//	repo.CreateDecision(ctx, sessionID, userID, true) // user wants to connect
func (r *DecisionRepository) CreateDecision(
	ctx context.Context,
	sessionID, userID string,
	connect bool,
) error {
	decision := db.Decision{
		SessionID: sessionID,
		UserID:    userID,
		Connect:   connect,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&decision).Error
}

// GetForSession returns every decision recorded for a session, oldest first.
func (r *DecisionRepository) GetForSession(ctx context.Context, sessionID string) ([]db.Decision, error) {
	var decisions []db.Decision
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&decisions).Error
	return decisions, err
}

// GetForUser returns the user's stored verdict for a session, or
// gorm.ErrRecordNotFound if they have not decided yet.
func (r *DecisionRepository) GetForUser(ctx context.Context, sessionID, userID string) (*db.Decision, error) {
	var decision db.Decision
	err := r.db.WithContext(ctx).
		First(&decision, "session_id = ? AND user_id = ?", sessionID, userID).Error
	if err != nil {
		return nil, err
	}
	return &decision, nil
}

// DeleteForSession removes all decisions for a purged session.
func (r *DecisionRepository) DeleteForSession(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&db.Decision{}).Error
}
