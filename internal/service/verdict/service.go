package verdict

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/sevenpm/date-backend/internal/app"
	"github.com/sevenpm/date-backend/internal/db"
	svcErr "github.com/sevenpm/date-backend/internal/errors"
	"github.com/sevenpm/date-backend/internal/middleware"
	"github.com/sevenpm/date-backend/internal/relay"
	"github.com/sevenpm/date-backend/internal/repository"
)

// Service records accept/reject verdicts and drives session cleanup.
//
// The decision write, the cooldown block and the purge are separate record
// writes with no spanning transaction; a cleanup intent row is written ahead
// of the destructive steps so an interrupted purge is resumed at startup
// instead of leaking a half-deleted session.
type Service struct {
	appCtx       *app.AppContext
	sessionRepo  *repository.SessionRepository
	decisionRepo *repository.DecisionRepository
	messageRepo  *repository.MessageRepository
	blockRepo    *repository.BlockRepository
	reportRepo   *repository.ReportRepository
	intentRepo   *repository.IntentRepository
	hub          *relay.Hub
}

// NewVerdictService creates a new Verdict service with dependencies from AppContext.
func NewVerdictService(appCtx *app.AppContext, hub *relay.Hub) *Service {
	return &Service{
		appCtx:       appCtx,
		sessionRepo:  repository.NewSessionRepository(appCtx.DB),
		decisionRepo: repository.NewDecisionRepository(appCtx.DB),
		messageRepo:  repository.NewMessageRepository(appCtx.DB),
		blockRepo:    repository.NewBlockRepository(appCtx.DB),
		reportRepo:   repository.NewReportRepository(appCtx.DB),
		intentRepo:   repository.NewIntentRepository(appCtx.DB),
		hub:          hub,
	}
}

// Outcome is the caller-visible result of recording a decision.
type Outcome struct {
	Connect bool  `json:"connect"`
	State   State `json:"state"`
	// Mutual is nil while the peer is undecided.
	Mutual *bool `json:"mutual"`
}

// Record stores the caller's verdict for a session and runs the cleanup
// evaluation. A repeat call returns the stored verdict without re-running
// side effects.
func (s *Service) Record(ctx context.Context, sessionID, userID string, connect bool) (*Outcome, error) {
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("session not found")
		}
		return nil, err
	}
	if session.UserAID != userID && session.UserBID != userID {
		return nil, svcErr.Forbidden("not a participant of this session")
	}

	// First write wins: a prior verdict short-circuits side effects.
	if existing, err := s.decisionRepo.GetForUser(ctx, sessionID, userID); err == nil {
		state, evalErr := s.evaluate(ctx, session, existing)
		if evalErr != nil {
			return nil, evalErr
		}
		return outcomeFor(existing.Connect, state), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.decisionRepo.CreateDecision(ctx, sessionID, userID, connect); err != nil {
		return nil, err
	}

	if !connect {
		// Rejection starts the cooldown window for the other participant.
		peerID := session.UserAID
		if peerID == userID {
			peerID = session.UserBID
		}
		expiresAt := time.Now().UTC().Add(s.appCtx.Cfg.App.BlockWindow)
		if err := s.blockRepo.Upsert(ctx, userID, peerID, expiresAt); err != nil {
			s.appCtx.Logger.Error("block write failed", "err", err, "session", sessionID)
		}
	}

	just := &db.Decision{SessionID: sessionID, UserID: userID, Connect: connect}
	state, err := s.evaluate(ctx, session, just)
	if err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("decision recorded",
		"session", sessionID, "user", userID, "connect", connect, "state", string(state))

	return outcomeFor(connect, state), nil
}

// evaluate re-queries the session's decisions and applies the state machine,
// executing the purge when it lands on StatePurged.
//
// The just-written decision is unioned into the fetched set defensively:
// the store does not guarantee read-your-own-writes.
func (s *Service) evaluate(ctx context.Context, session *db.ChatSession, just *db.Decision) (State, error) {
	decisions, err := s.decisionRepo.GetForSession(ctx, session.ID)
	if err != nil {
		return "", err
	}
	found := false
	for _, d := range decisions {
		if d.UserID == just.UserID {
			found = true
			break
		}
	}
	if !found {
		decisions = append(decisions, *just)
	}

	hasReport := false
	if len(decisions) >= 2 {
		hasReport, err = s.reportRepo.ExistsForSession(ctx, session.ID)
		if err != nil {
			return "", err
		}
	}

	state := Evaluate(decisions, hasReport)

	switch state {
	case StateMutual, StateRetained:
		// Terminal without deletion; the chat window is over either way.
		s.hub.EndCountdown(session.ID)
	case StatePurged:
		s.hub.EndCountdown(session.ID)
		s.purge(ctx, session.ID)
	}

	return state, nil
}

// purge deletes the session's messages, decisions and the session row
// itself. Intent is
// recorded first; rows already removed by the peer's racing cleanup are
// treated as success, other failures are logged as unresolved and the
// intent stays pending for the startup resume.
func (s *Service) purge(ctx context.Context, sessionID string) {
	if err := s.intentRepo.MarkPending(ctx, sessionID); err != nil {
		s.appCtx.Logger.Error("cleanup intent write failed", "err", err, "session", sessionID)
		return
	}

	failed := false
	if err := s.messageRepo.DeleteForSession(ctx, sessionID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.appCtx.Logger.Error("message purge failed", "err", err, "session", sessionID)
		failed = true
	}
	if err := s.decisionRepo.DeleteForSession(ctx, sessionID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.appCtx.Logger.Error("decision purge failed", "err", err, "session", sessionID)
		failed = true
	}
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.appCtx.Logger.Error("session delete failed", "err", err, "session", sessionID)
		failed = true
	}

	if failed {
		return
	}
	if err := s.intentRepo.MarkDone(ctx, sessionID); err != nil {
		s.appCtx.Logger.Error("cleanup intent close failed", "err", err, "session", sessionID)
		return
	}

	s.appCtx.Logger.Info("session purged", "session", sessionID)
}

// ResumePendingCleanups finishes purges interrupted by a crash. Called once
// at startup.
func (s *Service) ResumePendingCleanups(ctx context.Context) error {
	pending, err := s.intentRepo.ListPending(ctx)
	if err != nil {
		return err
	}
	for _, intent := range pending {
		s.appCtx.Logger.Warn("resuming interrupted cleanup", "session", intent.SessionID)
		s.purge(ctx, intent.SessionID)
	}
	return nil
}

// Report files a moderation flag against the session's other participant.
// Its existence permanently suppresses message deletion.
func (s *Service) Report(ctx context.Context, sessionID, reporterID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return svcErr.InvalidArgument("reason is required")
	}

	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.NotFound("session not found")
		}
		return err
	}
	if session.UserAID != reporterID && session.UserBID != reporterID {
		return svcErr.Forbidden("not a participant of this session")
	}

	reportedID := session.UserAID
	if reportedID == reporterID {
		reportedID = session.UserBID
	}

	report := &db.Report{
		SessionID:  sessionID,
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     strings.TrimSpace(reason),
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return err
	}

	s.appCtx.Logger.Info("session reported", "session", sessionID, "reporter", reporterID)
	return nil
}

func outcomeFor(connect bool, state State) *Outcome {
	out := &Outcome{Connect: connect, State: state}
	if state != StateAwaitingDecisions {
		mutual := state == StateMutual
		out.Mutual = &mutual
	}
	return out
}

// --- HTTP handlers ---

func (s *Service) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Connect *bool `json:"connect"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Connect == nil {
		svcErr.Respond(w, svcErr.InvalidArgument("connect is required"))
		return
	}

	sessionID := chi.URLParam(r, "session_id")
	userID := middleware.UserID(r.Context())

	outcome, err := s.Record(r.Context(), sessionID, userID, *req.Connect)
	if err != nil {
		svcErr.Respond(w, err)
		return
	}

	respondJSON(w, http.StatusOK, outcome)
}

func (s *Service) handleReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Respond(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	sessionID := chi.URLParam(r, "session_id")
	userID := middleware.UserID(r.Context())

	if err := s.Report(r.Context(), sessionID, userID, req.Reason); err != nil {
		svcErr.Respond(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *Service) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	blocks, err := s.blockRepo.ListActive(r.Context(), userID, time.Now().UTC())
	if err != nil {
		svcErr.Respond(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"blocks": blocks})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
