package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sevenpm/date-backend/internal/db"
	"github.com/sevenpm/date-backend/internal/utils/pagination"
)

// MessageRepository provides data access methods for the ChatMessage model.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB connection.
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

func (r *MessageRepository) Create(ctx context.Context, message *db.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *MessageRepository) Get(ctx context.Context, id string) (*db.ChatMessage, error) {
	var message db.ChatMessage
	if err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// ListForSession returns messages for a session in ascending
// (created_at, id) order.
//
// Behavior:
//   - Supports cursor-based pagination via paginationToken; a page never
//     re-delivers a message already returned by an earlier page, so clients
//     dedupe for free.
//   - Ordering is by server-assigned creation time with id as tie-break.
//
// Example:
//
//	repo.ListForSession(ctx, sessionID, nil, 50) // first 50 messages
func (r *MessageRepository) ListForSession(
	ctx context.Context,
	sessionID string,
	paginationToken *string,
	limit int,
) ([]db.ChatMessage, *string, error) {
	var messages []db.ChatMessage

	// decode cursor if provided
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Limit(limit + 1)

	// apply cursor
	if cursor.MessageID != "" && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix).UTC()
		query = query.Where(
			"(created_at > ? OR (created_at = ? AND id > ?))",
			ts, ts, cursor.MessageID,
		)
	}

	if err := query.Find(&messages).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(messages) > limit {
		last := messages[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			MessageID:   last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		messages = messages[:limit]
	}

	return messages, nextToken, nil
}

// CountForSession returns the number of messages stored for a session.
func (r *MessageRepository) CountForSession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.ChatMessage{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

// DeleteForSession removes all messages for a session. Rows already gone are
// fine; the other participant's cleanup may have raced ours.
func (r *MessageRepository) DeleteForSession(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&db.ChatMessage{}).Error
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
