package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sevenpm/date-backend/internal/db"
)

// ReportRepository provides data access methods for the Report model.
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new repository bound to the given DB connection.
func NewReportRepository(database *gorm.DB) *ReportRepository {
	return &ReportRepository{db: database}
}

func (r *ReportRepository) Create(ctx context.Context, report *db.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// ExistsForSession reports whether any report references the session.
// Cleanup calls this before deleting anything: a reported session keeps its
// messages as evidence no matter the decision outcome.
func (r *ReportRepository) ExistsForSession(ctx context.Context, sessionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Report{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count > 0, err
}
