package relay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is one hub-delivered notification. Message bodies ride along so a
// foreground client can append without a follow-up fetch; everything else is
// record type + ids.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	SenderID  string `json:"sender_id,omitempty"`
	Body      string `json:"body,omitempty"`
	EndsAt    int64  `json:"ends_at,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

const (
	EventMessageCreated = "message_created"
	EventSessionStarted = "session_started"
	EventSessionEnded   = "session_ended"
)

type countdown struct {
	cancel context.CancelFunc
}

// client pairs a connection with its write lock. gorilla/websocket supports
// only one concurrent writer per Conn, and hub writers are arbitrary handler
// goroutines plus countdown timers, so every frame goes through write.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(event)
}

// Hub tracks connected websocket clients and the countdown timer of each live
// session. Countdown timers are context-scoped: ending a session early
// cancels its timer instead of letting it fire into torn-down state.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*client
	countdowns  map[string]countdown
	log         *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		connections: make(map[string]*client),
		countdowns:  make(map[string]countdown),
		log:         log,
	}
}

// Register attaches a user's websocket connection, replacing any previous one.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[userID]; ok {
		_ = existing.conn.Close()
	}
	h.connections[userID] = &client{conn: conn}

	h.log.Debug("ws connection registered", "user", userID)
}

// Unregister drops a user's connection if it is still the registered one.
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.connections[userID]; ok && current.conn == conn {
		_ = current.conn.Close()
		delete(h.connections, userID)
		h.log.Debug("ws connection unregistered", "user", userID)
	}
}

// IsOnline reports whether a user has a live connection; callers fall back to
// APNs when they do not.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[userID]
	return ok
}

// Send delivers an event to a user if they are connected. A write failure
// drops the connection; the periodic poll is the safety net.
func (h *Hub) Send(userID string, event Event) {
	h.mu.RLock()
	c, ok := h.connections[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if err := c.write(event); err != nil {
		h.log.Warn("ws write failed, dropping connection", "user", userID, "err", err)
		h.Unregister(userID, c.conn)
	}
}

// StartCountdown schedules the session_ended broadcast for when the chat
// window closes. The returned context is cancelled by EndCountdown, so an
// early session end (decision recorded, session purged) never produces a
// stray broadcast.
func (h *Hub) StartCountdown(sessionID string, participants []string, endsAt time.Time) {
	ctx, cancel := context.WithCancel(context.Background())

	h.mu.Lock()
	if existing, ok := h.countdowns[sessionID]; ok {
		existing.cancel()
	}
	h.countdowns[sessionID] = countdown{cancel: cancel}
	h.mu.Unlock()

	timer := time.NewTimer(time.Until(endsAt))
	go func() {
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		// Re-check registration; EndCountdown may have raced the timer.
		h.mu.Lock()
		if _, ok := h.countdowns[sessionID]; !ok {
			h.mu.Unlock()
			return
		}
		delete(h.countdowns, sessionID)
		h.mu.Unlock()

		event := Event{
			Type:      EventSessionEnded,
			SessionID: sessionID,
			Timestamp: time.Now().UnixMilli(),
		}
		for _, userID := range participants {
			h.Send(userID, event)
		}
	}()
}

// EndCountdown cancels a session's pending countdown broadcast.
func (h *Hub) EndCountdown(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.countdowns[sessionID]; ok {
		c.cancel()
		delete(h.countdowns, sessionID)
	}
}
