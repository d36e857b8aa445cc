package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sevenpm/date-backend/internal/db"
)

// SessionRepository provides data access methods for the ChatSession model.
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new repository bound to the given DB connection.
func NewSessionRepository(database *gorm.DB) *SessionRepository {
	return &SessionRepository{db: database}
}

func (r *SessionRepository) Create(ctx context.Context, session *db.ChatSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*db.ChatSession, error) {
	var session db.ChatSession
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes the session row. A missing row is not an error: the other
// participant's cleanup may have already purged it.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&db.ChatSession{}).Error
}

// IsParticipant reports whether the user is one of the session's two sides.
func (r *SessionRepository) IsParticipant(ctx context.Context, sessionID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.ChatSession{}).
		Where("id = ? AND (user_a_id = ? OR user_b_id = ?)", sessionID, userID, userID).
		Count(&count).Error
	return count > 0, err
}
