package chat

import (
	"github.com/go-chi/chi/v5"

	"github.com/sevenpm/date-backend/internal/middleware"
)

// Registrar ties the Chat service into the HTTP router
type Registrar struct {
	svc       *Service
	validator middleware.TokenValidator
}

// NewRegistrar creates a new Registrar for the Chat service
func NewRegistrar(svc *Service, validator middleware.TokenValidator) *Registrar {
	return &Registrar{svc: svc, validator: validator}
}

// Register attaches the Chat routes to the router
func (reg *Registrar) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(reg.validator))
		r.Post("/api/v1/sessions/{session_id}/messages", reg.svc.handleSend)
		r.Get("/api/v1/sessions/{session_id}/messages", reg.svc.handleList)
	})

	// Token arrives as a query parameter on the websocket route.
	r.Get("/ws", reg.svc.handleWS(reg.validator))
}
