package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sevenpm/date-backend/internal/app"
	"github.com/sevenpm/date-backend/internal/db"
	svcErr "github.com/sevenpm/date-backend/internal/errors"
	"github.com/sevenpm/date-backend/internal/middleware"
	"github.com/sevenpm/date-backend/internal/notify"
	"github.com/sevenpm/date-backend/internal/relay"
	"github.com/sevenpm/date-backend/internal/repository"
)

const defaultPageSize = 50

// Service implements the message relay for live sessions. Delivery is
// three-legged: the write, a hub event for a connected peer, and an APNs
// nudge for a disconnected one. Clients also poll; cursor pagination keeps
// re-fetches duplicate-free.
type Service struct {
	appCtx      *app.AppContext
	sessionRepo *repository.SessionRepository
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
	hub         *relay.Hub
	notifier    *notify.Notifier
}

// NewChatService creates a new Chat service with dependencies from AppContext.
func NewChatService(appCtx *app.AppContext, hub *relay.Hub, notifier *notify.Notifier) *Service {
	return &Service{
		appCtx:      appCtx,
		sessionRepo: repository.NewSessionRepository(appCtx.DB),
		messageRepo: repository.NewMessageRepository(appCtx.DB),
		userRepo:    repository.NewUserRepository(appCtx.DB),
		hub:         hub,
		notifier:    notifier,
	}
}

// Send appends a message to the session and fans it out to the peer.
func (s *Service) Send(ctx context.Context, sessionID, senderID, body string) (*db.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, svcErr.InvalidArgument("message body is required")
	}
	if len(body) > 2000 {
		return nil, svcErr.InvalidArgument("message body is too long")
	}

	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("session not found")
		}
		return nil, err
	}
	if session.UserAID != senderID && session.UserBID != senderID {
		return nil, svcErr.Forbidden("not a participant of this session")
	}

	// Millisecond precision matches the pagination cursor; finer timestamps
	// would make the keyset boundary re-deliver the last row of a page.
	now := time.Now().UTC().Truncate(time.Millisecond)
	if now.After(session.ExpiresAt) {
		return nil, svcErr.Conflict("session has ended")
	}

	message := &db.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		SenderID:  senderID,
		Body:      body,
		CreatedAt: now,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	peerID := session.UserAID
	if peerID == senderID {
		peerID = session.UserBID
	}

	if s.hub.IsOnline(peerID) {
		s.hub.Send(peerID, relay.Event{
			Type:      relay.EventMessageCreated,
			SessionID: sessionID,
			MessageID: message.ID,
			SenderID:  senderID,
			Body:      body,
			Timestamp: now.UnixMilli(),
		})
	} else if peer, err := s.userRepo.GetByID(ctx, peerID); err == nil && peer.PushToken != nil {
		// Push carries only the record tag and id; the device re-fetches.
		s.notifier.MessageCreated(*peer.PushToken, sessionID, message.ID)
	}

	return message, nil
}

// List returns session messages in ascending creation order with cursor
// pagination.
func (s *Service) List(ctx context.Context, sessionID, userID string, token *string, limit int) ([]db.ChatMessage, *string, error) {
	ok, err := s.sessionRepo.IsParticipant(ctx, sessionID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, svcErr.Forbidden("not a participant of this session")
	}

	if limit <= 0 || limit > 200 {
		limit = defaultPageSize
	}
	return s.messageRepo.ListForSession(ctx, sessionID, token, limit)
}

// --- HTTP handlers ---

type sendRequest struct {
	Body string `json:"body"`
}

func (s *Service) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Respond(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	sessionID := chi.URLParam(r, "session_id")
	senderID := middleware.UserID(r.Context())

	message, err := s.Send(r.Context(), sessionID, senderID, req.Body)
	if err != nil {
		svcErr.Respond(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, message)
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	userID := middleware.UserID(r.Context())

	var token *string
	if after := r.URL.Query().Get("after"); after != "" {
		token = &after
	}
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}

	messages, next, err := s.List(r.Context(), sessionID, userID, token, limit)
	if err != nil {
		svcErr.Respond(w, err)
		return
	}

	resp := map[string]any{"messages": messages}
	if next != nil {
		resp["next_token"] = *next
	}
	respondJSON(w, http.StatusOK, resp)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
