package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sevenpm/date-backend/internal/db"
)

// RSVPRepository provides data access methods for the RSVP model.
type RSVPRepository struct {
	db *gorm.DB
}

// NewRSVPRepository creates a new repository bound to the given DB connection.
func NewRSVPRepository(database *gorm.DB) *RSVPRepository {
	return &RSVPRepository{db: database}
}

// Upsert opts the user in for the given event date and reports whether a row
// was actually inserted. Re-opting-in is a no-op; the (user_id, event_date)
// PK keeps one row per user per night.
func (r *RSVPRepository) Upsert(ctx context.Context, userID, eventDate string) (bool, error) {
	rsvp := db.RSVP{UserID: userID, EventDate: eventDate}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_date"}},
			DoNothing: true,
		}).
		Create(&rsvp)
	return result.RowsAffected > 0, result.Error
}

// Confirmed reports whether the user has opted in for the event date.
func (r *RSVPRepository) Confirmed(ctx context.Context, userID, eventDate string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.RSVP{}).
		Where("user_id = ? AND event_date = ?", userID, eventDate).
		Count(&count).Error
	return count > 0, err
}

// CountForDate returns how many users opted in for the event date.
func (r *RSVPRepository) CountForDate(ctx context.Context, eventDate string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.RSVP{}).
		Where("event_date = ?", eventDate).
		Count(&count).Error
	return count, err
}
