package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sevenpm/date-backend/internal/db"
)

// PhotoRepository provides data access methods for the Photo model.
type PhotoRepository struct {
	db *gorm.DB
}

// NewPhotoRepository creates a new repository bound to the given DB connection.
func NewPhotoRepository(database *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: database}
}

func (r *PhotoRepository) Create(ctx context.Context, photo *db.Photo) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

// ListForUser returns the user's gallery in display order.
func (r *PhotoRepository) ListForUser(ctx context.Context, userID string) ([]db.Photo, error) {
	var photos []db.Photo
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC, created_at ASC").
		Find(&photos).Error
	return photos, err
}

func (r *PhotoRepository) Delete(ctx context.Context, userID, photoID string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", photoID, userID).
		Delete(&db.Photo{}).Error
}
