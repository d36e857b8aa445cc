package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sevenpm/date-backend/internal/db"
)

// ProfileRepository provides data access methods for the Profile model.
// It encapsulates all queries used by candidate search and profile editing.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// Upsert inserts or replaces the user's profile. The primary key is the
// user id, so a second save overwrites the first.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *db.Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "age", "gender", "home_location", "interested_locations",
				"bio", "interests", "desired_genders",
				"desired_age_min", "desired_age_max", "discoverable", "updated_at",
			}),
		}).
		Create(profile).Error
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (*db.Profile, error) {
	var profile db.Profile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetMany fetches a batch of profiles by user id. Missing ids are simply
// absent from the result; callers treat that as a stale reference.
func (r *ProfileRepository) GetMany(ctx context.Context, userIDs []string) ([]db.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var profiles []db.Profile
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&profiles).Error
	return profiles, err
}

// FindDiscoverable returns discoverable profiles passing the coarse forward
// filter: the candidate's gender is one the seeker wants and the candidate's
// age lies in the seeker's desired range.
//
// Location containment and the reverse direction of the match are checked in
// Go on the JSON set columns; only scalar columns are filtered here so the
// query stays portable between MySQL and the sqlite test harness.
func (r *ProfileRepository) FindDiscoverable(
	ctx context.Context,
	seekerID string,
	desiredGenders []string,
	ageMin, ageMax int,
) ([]db.Profile, error) {
	var profiles []db.Profile
	err := r.db.WithContext(ctx).
		Where("discoverable = ?", true).
		Where("user_id <> ?", seekerID).
		Where("gender IN ?", desiredGenders).
		Where("age BETWEEN ? AND ?", ageMin, ageMax).
		Find(&profiles).Error
	return profiles, err
}

// AddInterestedLocations persists a broadened location-interest set after the
// seeker accepts the widen-your-search suggestion.
func (r *ProfileRepository) AddInterestedLocations(ctx context.Context, userID string, locations []string) error {
	profile, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}

	existing := make(map[string]bool, len(profile.InterestedLocations))
	for _, loc := range profile.InterestedLocations {
		existing[loc] = true
	}
	for _, loc := range locations {
		if !existing[loc] {
			profile.InterestedLocations = append(profile.InterestedLocations, loc)
			existing[loc] = true
		}
	}

	return r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("user_id = ?", userID).
		Update("interested_locations", profile.InterestedLocations).Error
}

// DistinctHomeLocations lists home locations of discoverable profiles,
// used to build broaden-search suggestions.
func (r *ProfileRepository) DistinctHomeLocations(ctx context.Context) ([]string, error) {
	var locations []string
	err := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("discoverable = ?", true).
		Distinct("home_location").
		Pluck("home_location", &locations).Error
	return locations, err
}
