package chat

import (
	"net/http"

	"github.com/gorilla/websocket"

	svcErr "github.com/sevenpm/date-backend/internal/errors"
	"github.com/sevenpm/date-backend/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Clients are native apps, not browsers.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS upgrades the connection and parks it in the hub. The token rides
// in a query parameter because websocket clients cannot set headers reliably.
func (s *Service) handleWS(validator middleware.TokenValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			svcErr.Respond(w, svcErr.Unauthorized("token required"))
			return
		}
		userID, err := validator.ValidateJWT(token)
		if err != nil {
			svcErr.Respond(w, svcErr.Unauthorized("invalid token"))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.appCtx.Logger.Warn("ws upgrade failed", "err", err, "user", userID)
			return
		}

		s.hub.Register(userID, conn)

		// The connection is delivery-only; drain reads until the client
		// goes away so we notice the close.
		go func() {
			defer s.hub.Unregister(userID, conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
