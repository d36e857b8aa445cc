package notify

import (
	"fmt"
	"log/slog"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"

	"github.com/sevenpm/date-backend/internal/config"
)

// Notifier delivers APNs pushes. Pushes carry only a record type tag and a
// record id; the client performs a follow-up fetch for content.
type Notifier struct {
	client *apns2.Client
	topic  string
	log    *slog.Logger
}

// New builds a token-authenticated APNs client. Returns (nil, nil) when no
// key is configured, in which case pushes are silently skipped.
func New(cfg *config.Config, log *slog.Logger) (*Notifier, error) {
	if cfg.APNs.KeyPath == "" {
		return nil, nil
	}

	authKey, err := token.AuthKeyFromFile(cfg.APNs.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load apns key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.APNs.KeyID,
		TeamID:  cfg.APNs.TeamID,
	})
	if cfg.APNs.Prod {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &Notifier{client: client, topic: cfg.APNs.Topic, log: log}, nil
}

// MessageCreated tells a device a new chat message exists so it can fetch it.
// Push failures are logged and swallowed; delivery is best effort and the
// periodic poll covers the gap.
func (n *Notifier) MessageCreated(deviceToken, sessionID, messageID string) {
	if n == nil || deviceToken == "" {
		return
	}

	p := payload.NewPayload().
		ContentAvailable().
		Custom("record_type", "chat_message").
		Custom("record_id", messageID).
		Custom("session_id", sessionID)

	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       n.topic,
		Payload:     p,
		Priority:    apns2.PriorityLow,
		PushType:    apns2.PushTypeBackground,
	}

	res, err := n.client.Push(notification)
	if err != nil {
		n.log.Warn("apns push failed", "err", err, "session", sessionID)
		return
	}
	if !res.Sent() {
		n.log.Warn("apns push rejected", "reason", res.Reason, "session", sessionID)
	}
}

// MatchFound wakes the candidate's device when a session was created for them.
func (n *Notifier) MatchFound(deviceToken, sessionID string) {
	if n == nil || deviceToken == "" {
		return
	}

	p := payload.NewPayload().
		Alert("You matched! Your 7pm chat is starting.").
		Custom("record_type", "chat_session").
		Custom("record_id", sessionID)

	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       n.topic,
		Payload:     p,
		PushType:    apns2.PushTypeAlert,
	}

	res, err := n.client.Push(notification)
	if err != nil {
		n.log.Warn("apns push failed", "err", err, "session", sessionID)
		return
	}
	if !res.Sent() {
		n.log.Warn("apns push rejected", "reason", res.Reason, "session", sessionID)
	}
}
