package rsvp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sevenpm/date-backend/internal/app"
	"github.com/sevenpm/date-backend/internal/db"
	svcErr "github.com/sevenpm/date-backend/internal/errors"
	"github.com/sevenpm/date-backend/internal/middleware"
	"github.com/sevenpm/date-backend/internal/repository"
)

// Service implements the nightly-event RSVP API.
type Service struct {
	appCtx   *app.AppContext
	rsvpRepo *repository.RSVPRepository
}

// NewRSVPService creates a new RSVP service with dependencies from AppContext.
func NewRSVPService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		rsvpRepo: repository.NewRSVPRepository(appCtx.DB),
	}
}

// OptIn confirms the caller for tonight's event. Idempotent per (user, day).
func (s *Service) OptIn(ctx context.Context, userID string) (eventDate string, err error) {
	eventDate = db.EventDate(time.Now())
	inserted, err := s.rsvpRepo.Upsert(ctx, userID, eventDate)
	if err != nil {
		return "", err
	}

	// Nudge the cached lobby count instead of invalidating it; the next
	// cache miss reconciles with the DB. Repeat opt-ins must not nudge.
	if inserted {
		key := s.appCtx.RedisCache.KeyForLobbyCount(eventDate)
		if _, ok, err := s.appCtx.RedisCache.GetLobbyCount(ctx, eventDate); err == nil && ok {
			_, _ = s.appCtx.RedisCache.Incr(ctx, key)
		}
	}

	return eventDate, nil
}

// Status returns whether the caller is confirmed for tonight plus the lobby
// count. Cache-first strategy:
//  1. Attempts to read the count from Redis (lobby:count:date).
//  2. On cache miss, falls back to the DB and updates Redis with a 1h TTL.
func (s *Service) Status(ctx context.Context, userID string) (confirmed bool, lobbyCount int64, err error) {
	eventDate := db.EventDate(time.Now())

	confirmed, err = s.rsvpRepo.Confirmed(ctx, userID, eventDate)
	if err != nil {
		return false, 0, err
	}

	if count, ok, err := s.appCtx.RedisCache.GetLobbyCount(ctx, eventDate); err == nil && ok {
		return confirmed, count, nil
	}

	lobbyCount, err = s.rsvpRepo.CountForDate(ctx, eventDate)
	if err != nil {
		return false, 0, err
	}
	_ = s.appCtx.RedisCache.UpdateLobbyCount(ctx, eventDate, lobbyCount)

	return confirmed, lobbyCount, nil
}

// --- HTTP handlers ---

func (s *Service) handleOptIn(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	eventDate, err := s.OptIn(r.Context(), userID)
	if err != nil {
		s.appCtx.Logger.Error("rsvp opt-in failed", "err", err, "user", userID)
		svcErr.Respond(w, err)
		return
	}

	s.appCtx.Logger.Debug("rsvp confirmed", "user", userID, "event", eventDate)
	respondJSON(w, http.StatusOK, map[string]any{
		"confirmed":  true,
		"event_date": eventDate,
	})
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	confirmed, count, err := s.Status(r.Context(), userID)
	if err != nil {
		svcErr.Respond(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"confirmed":   confirmed,
		"lobby_count": count,
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
