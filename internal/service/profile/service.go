package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/sevenpm/date-backend/internal/app"
	"github.com/sevenpm/date-backend/internal/db"
	svcErr "github.com/sevenpm/date-backend/internal/errors"
	"github.com/sevenpm/date-backend/internal/middleware"
	"github.com/sevenpm/date-backend/internal/repository"
	"github.com/sevenpm/date-backend/internal/storage"
)

// Service implements profile editing and the S3-backed photo gallery.
type Service struct {
	appCtx      *app.AppContext
	profileRepo *repository.ProfileRepository
	photoRepo   *repository.PhotoRepository
	photos      *storage.PhotoStore // nil → uploads disabled
}

// NewProfileService creates a new Profile service with dependencies from AppContext.
func NewProfileService(appCtx *app.AppContext, photos *storage.PhotoStore) *Service {
	return &Service{
		appCtx:      appCtx,
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		photoRepo:   repository.NewPhotoRepository(appCtx.DB),
		photos:      photos,
	}
}

// ProfileInput is the client-supplied profile shape.
type ProfileInput struct {
	Name                string   `json:"name"`
	Age                 int      `json:"age"`
	Gender              string   `json:"gender"`
	HomeLocation        string   `json:"home_location"`
	InterestedLocations []string `json:"interested_locations"`
	Bio                 string   `json:"bio"`
	Interests           []string `json:"interests"`
	DesiredGenders      []string `json:"desired_genders"`
	DesiredAgeMin       int      `json:"desired_age_min"`
	DesiredAgeMax       int      `json:"desired_age_max"`
	Discoverable        *bool    `json:"discoverable"`
}

// Upsert validates and saves the caller's profile.
func (s *Service) Upsert(ctx context.Context, userID string, in ProfileInput) (*db.Profile, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, svcErr.InvalidArgument("name is required")
	}
	if in.Age < 18 {
		return nil, svcErr.InvalidArgument("must be 18 or older")
	}
	if in.Gender == "" {
		return nil, svcErr.InvalidArgument("gender is required")
	}
	if in.HomeLocation == "" {
		return nil, svcErr.InvalidArgument("home_location is required")
	}
	if len(in.DesiredGenders) == 0 {
		return nil, svcErr.InvalidArgument("desired_genders is required")
	}
	if in.DesiredAgeMin < 18 || in.DesiredAgeMax < in.DesiredAgeMin {
		return nil, svcErr.InvalidArgument("desired age range is invalid")
	}

	discoverable := true
	if in.Discoverable != nil {
		discoverable = *in.Discoverable
	}

	// Home location is always part of the interest set; a user searching
	// "only my town" should still see neighbors who listed it.
	locations := in.InterestedLocations
	found := false
	for _, loc := range locations {
		if loc == in.HomeLocation {
			found = true
			break
		}
	}
	if !found {
		locations = append(locations, in.HomeLocation)
	}

	profile := &db.Profile{
		UserID:              userID,
		Name:                strings.TrimSpace(in.Name),
		Age:                 in.Age,
		Gender:              in.Gender,
		HomeLocation:        in.HomeLocation,
		InterestedLocations: datatypes.NewJSONSlice(locations),
		Bio:                 in.Bio,
		Interests:           datatypes.NewJSONSlice(in.Interests),
		DesiredGenders:      datatypes.NewJSONSlice(in.DesiredGenders),
		DesiredAgeMin:       in.DesiredAgeMin,
		DesiredAgeMax:       in.DesiredAgeMax,
		Discoverable:        discoverable,
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*db.Profile, error) {
	return s.profileRepo.Get(ctx, userID)
}

// PresignPhotoUpload creates the photo record and returns a pre-signed PUT URL.
func (s *Service) PresignPhotoUpload(ctx context.Context, userID, contentType string) (photoID, uploadURL string, expiresIn time.Duration, err error) {
	if s.photos == nil {
		return "", "", 0, svcErr.InvalidArgument("photo uploads are not enabled")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	photoID = uuid.New().String()
	objectKey := fmt.Sprintf("profiles/%s/%s.jpg", userID, photoID)

	uploadURL, expiresIn, err = s.photos.PresignUpload(ctx, objectKey, contentType)
	if err != nil {
		return "", "", 0, err
	}

	existing, err := s.photoRepo.ListForUser(ctx, userID)
	if err != nil {
		return "", "", 0, err
	}

	photo := &db.Photo{
		ID:        photoID,
		UserID:    userID,
		ObjectKey: objectKey,
		Position:  len(existing),
	}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		return "", "", 0, err
	}
	return photoID, uploadURL, expiresIn, nil
}

// PhotoURLs returns public URLs for a user's gallery in display order.
// With uploads disabled it returns nil rather than failing; profiles without
// photos are legal everywhere.
func (s *Service) PhotoURLs(ctx context.Context, userID string) ([]string, error) {
	if s.photos == nil {
		return nil, nil
	}
	photos, err := s.photoRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(photos))
	for _, p := range photos {
		urls = append(urls, s.photos.PublicURL(p.ObjectKey))
	}
	return urls, nil
}

// DeletePhoto removes the photo record and, best effort, the stored object.
func (s *Service) DeletePhoto(ctx context.Context, userID, photoID string) error {
	var objectKey string
	photos, err := s.photoRepo.ListForUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, p := range photos {
		if p.ID == photoID {
			objectKey = p.ObjectKey
			break
		}
	}
	if objectKey == "" {
		return svcErr.NotFound("photo not found")
	}

	if err := s.photoRepo.Delete(ctx, userID, photoID); err != nil {
		return err
	}

	// Row first, object second; object failures are logged, not surfaced.
	if s.photos != nil {
		if err := s.photos.Delete(ctx, objectKey); err != nil {
			s.appCtx.Logger.Warn("photo object delete failed", "err", err, "key", objectKey)
		}
	}
	return nil
}

// --- HTTP handlers ---

func (s *Service) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var in ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		svcErr.Respond(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	userID := middleware.UserID(r.Context())
	profile, err := s.Upsert(r.Context(), userID, in)
	if err != nil {
		svcErr.Respond(w, err)
		return
	}

	s.appCtx.Logger.Debug("profile saved", "user", userID)
	respondJSON(w, http.StatusOK, profile)
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	profile, err := s.Get(r.Context(), userID)
	if err != nil {
		svcErr.Respond(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (s *Service) handlePresignUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContentType string `json:"content_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Respond(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	userID := middleware.UserID(r.Context())
	photoID, url, expiresIn, err := s.PresignPhotoUpload(r.Context(), userID, req.ContentType)
	if err != nil {
		svcErr.Respond(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"photo_id":   photoID,
		"upload_url": url,
		"expires_in": int(expiresIn.Seconds()),
	})
}

func (s *Service) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	urls, err := s.PhotoURLs(r.Context(), userID)
	if err != nil {
		svcErr.Respond(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"photos": urls})
}

func (s *Service) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	photoID := chi.URLParam(r, "photo_id")
	if photoID == "" {
		svcErr.Respond(w, svcErr.InvalidArgument("photo_id is required"))
		return
	}
	if err := s.DeletePhoto(r.Context(), userID, photoID); err != nil {
		svcErr.Respond(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
