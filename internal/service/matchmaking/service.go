package matchmaking

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/sevenpm/date-backend/internal/app"
	"github.com/sevenpm/date-backend/internal/db"
	svcErr "github.com/sevenpm/date-backend/internal/errors"
	"github.com/sevenpm/date-backend/internal/middleware"
	"github.com/sevenpm/date-backend/internal/notify"
	"github.com/sevenpm/date-backend/internal/relay"
	"github.com/sevenpm/date-backend/internal/repository"
	"github.com/sevenpm/date-backend/internal/service/profile"
)

// Match outcome statuses.
const (
	StatusMatched        = "matched"
	StatusNoMatch        = "no_match"
	StatusSuggestBroaden = "suggest_broaden"
)

// Service implements candidate search and session initiation for the nightly
// event. Search enforces bidirectional preference satisfaction; a produced
// match immediately gets a timed chat session.
type Service struct {
	appCtx      *app.AppContext
	profileRepo *repository.ProfileRepository
	sessionRepo *repository.SessionRepository
	blockRepo   *repository.BlockRepository
	userRepo    *repository.UserRepository
	profileSvc  *profile.Service
	hub         *relay.Hub
	notifier    *notify.Notifier

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMatchService creates a new Matchmaking service with dependencies from
// AppContext. The hub receives session_started events and countdown timers;
// the notifier wakes offline candidates.
func NewMatchService(appCtx *app.AppContext, profileSvc *profile.Service, hub *relay.Hub, notifier *notify.Notifier) *Service {
	return &Service{
		appCtx:      appCtx,
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		sessionRepo: repository.NewSessionRepository(appCtx.DB),
		blockRepo:   repository.NewBlockRepository(appCtx.DB),
		userRepo:    repository.NewUserRepository(appCtx.DB),
		profileSvc:  profileSvc,
		hub:         hub,
		notifier:    notifier,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CandidateSnapshot is the candidate's public-facing profile captured at
// match time. It is never re-fetched, so it can go stale if the candidate
// edits their profile mid-session; that is the intended contract.
type CandidateSnapshot struct {
	UserID string   `json:"user_id"`
	Name   string   `json:"name"`
	Age    int      `json:"age"`
	Bio    string   `json:"bio"`
	Photos []string `json:"photos,omitempty"`
}

// MatchResult is the outcome of one search attempt.
type MatchResult struct {
	Status             string             `json:"status"`
	Session            *db.ChatSession    `json:"session,omitempty"`
	Candidate          *CandidateSnapshot `json:"candidate,omitempty"`
	SuggestedLocations []string           `json:"suggested_locations,omitempty"`
	Note               string             `json:"note,omitempty"`
}

// FindMatch runs one search attempt for the caller.
//
// broadenLocations, when non-empty, is first persisted into the caller's
// interest set (the accepted widen-search suggestion). skipBroaden marks a
// declined suggestion: search proceeds with the unmodified filter and a thin
// candidate pool no longer triggers another suggestion.
//
// Infra failures degrade to a no_match outcome with a user-visible note;
// they never surface as a 5xx to the matching screen.
func (s *Service) FindMatch(ctx context.Context, userID string, broadenLocations []string, skipBroaden bool) (*MatchResult, error) {
	now := time.Now().UTC()
	eventDate := db.EventDate(now)

	if len(broadenLocations) > 0 {
		if err := s.profileRepo.AddInterestedLocations(ctx, userID, broadenLocations); err != nil {
			return nil, err
		}
	}

	seeker, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("create a profile before matching")
		}
		return nil, err
	}

	// Blocks and tonight's seen-set are independent fetches; issue them
	// concurrently and join before combining. Completion order is not
	// assumed anywhere below.
	var (
		blocked map[string]bool
		seen    map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		blocked, err = s.blockRepo.ActiveBlockedIDs(gctx, userID, now)
		return err
	})
	g.Go(func() error {
		var err error
		seen, err = s.appCtx.RedisCache.SeenTonight(gctx, userID, eventDate)
		return err
	})
	if err := g.Wait(); err != nil {
		s.appCtx.Logger.Error("candidate search prefetch failed", "err", err, "user", userID)
		return &MatchResult{Status: StatusNoMatch, Note: "search failed, try again"}, nil
	}

	coarse, err := s.profileRepo.FindDiscoverable(ctx, userID, seeker.DesiredGenders, seeker.DesiredAgeMin, seeker.DesiredAgeMax)
	if err != nil {
		s.appCtx.Logger.Error("candidate query failed", "err", err, "user", userID)
		return &MatchResult{Status: StatusNoMatch, Note: "search failed, try again"}, nil
	}

	qualified := make([]db.Profile, 0, len(coarse))
	for i := range coarse {
		candidate := &coarse[i]
		if seen[candidate.UserID] || blocked[candidate.UserID] {
			continue
		}
		if !mutualMatch(seeker, candidate) {
			continue
		}
		qualified = append(qualified, *candidate)
	}

	// Thin pool: offer a non-binding suggestion to widen the location
	// filter before settling, unless the caller already took or declined it.
	if len(qualified) < 2 && len(broadenLocations) == 0 && !skipBroaden {
		if suggestions := s.broadenSuggestions(ctx, seeker); len(suggestions) > 0 {
			return &MatchResult{
				Status:             StatusSuggestBroaden,
				SuggestedLocations: suggestions,
			}, nil
		}
	}

	if len(qualified) == 0 {
		return &MatchResult{Status: StatusNoMatch}, nil
	}

	s.mu.Lock()
	pick := pickRandom(s.rnd, qualified)
	s.mu.Unlock()

	session := &db.ChatSession{
		ID:        uuid.New().String(),
		UserAID:   userID,
		UserBID:   pick.UserID,
		EventDate: eventDate,
		StartedAt: now,
		ExpiresAt: now.Add(s.appCtx.Cfg.App.ChatWindow),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		// Session-creation failure is indistinguishable from "no candidate
		// found" as far as the matching screen is concerned.
		s.appCtx.Logger.Error("session create failed", "err", err, "user", userID)
		return &MatchResult{Status: StatusNoMatch, Note: "search failed, try again"}, nil
	}

	// Seen-set writes are best effort; a failure means the pair could meet
	// again tonight, which is annoying but harmless.
	if err := s.appCtx.RedisCache.MarkSeen(ctx, userID, pick.UserID, eventDate); err != nil {
		s.appCtx.Logger.Warn("failed to mark seen", "err", err)
	}
	if err := s.appCtx.RedisCache.MarkSeen(ctx, pick.UserID, userID, eventDate); err != nil {
		s.appCtx.Logger.Warn("failed to mark seen", "err", err)
	}

	s.hub.StartCountdown(session.ID, []string{session.UserAID, session.UserBID}, session.ExpiresAt)
	s.hub.Send(pick.UserID, relay.Event{
		Type:      relay.EventSessionStarted,
		SessionID: session.ID,
		EndsAt:    session.ExpiresAt.UnixMilli(),
		Timestamp: now.UnixMilli(),
	})
	if !s.hub.IsOnline(pick.UserID) {
		if user, err := s.userRepo.GetByID(ctx, pick.UserID); err == nil && user.PushToken != nil {
			s.notifier.MatchFound(*user.PushToken, session.ID)
		}
	}

	snapshot := s.snapshot(ctx, pick)

	s.appCtx.Logger.Info("match created",
		"session", session.ID, "seeker", userID, "candidate", pick.UserID)

	return &MatchResult{
		Status:    StatusMatched,
		Session:   session,
		Candidate: snapshot,
	}, nil
}

// snapshot captures the candidate's public profile at match time.
func (s *Service) snapshot(ctx context.Context, candidate *db.Profile) *CandidateSnapshot {
	snap := &CandidateSnapshot{
		UserID: candidate.UserID,
		Name:   candidate.Name,
		Age:    candidate.Age,
		Bio:    candidate.Bio,
	}
	if urls, err := s.profileSvc.PhotoURLs(ctx, candidate.UserID); err == nil {
		snap.Photos = urls
	}
	return snap
}

// broadenSuggestions lists discoverable home locations the seeker is not yet
// interested in.
func (s *Service) broadenSuggestions(ctx context.Context, seeker *db.Profile) []string {
	all, err := s.profileRepo.DistinctHomeLocations(ctx)
	if err != nil {
		return nil
	}

	interested := make(map[string]bool, len(seeker.InterestedLocations))
	for _, loc := range seeker.InterestedLocations {
		interested[loc] = true
	}

	var suggestions []string
	for _, loc := range all {
		if !interested[loc] {
			suggestions = append(suggestions, loc)
		}
	}
	return suggestions
}

// --- HTTP handlers ---

type matchRequest struct {
	BroadenLocations []string `json:"broaden_locations,omitempty"`
	SkipBroaden      bool     `json:"skip_broaden,omitempty"`
}

func (s *Service) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			svcErr.Respond(w, svcErr.InvalidArgument("invalid request body"))
			return
		}
	}

	userID := middleware.UserID(r.Context())
	result, err := s.FindMatch(r.Context(), userID, req.BroadenLocations, req.SkipBroaden)
	if err != nil {
		svcErr.Respond(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
}
