package verdict

import (
	"github.com/go-chi/chi/v5"

	"github.com/sevenpm/date-backend/internal/middleware"
)

// Registrar ties the Verdict service into the HTTP router
type Registrar struct {
	svc       *Service
	validator middleware.TokenValidator
}

// NewRegistrar creates a new Registrar for the Verdict service
func NewRegistrar(svc *Service, validator middleware.TokenValidator) *Registrar {
	return &Registrar{svc: svc, validator: validator}
}

// Register attaches the Verdict routes to the router
func (reg *Registrar) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(reg.validator))
		r.Post("/api/v1/sessions/{session_id}/decision", reg.svc.handleDecision)
		r.Post("/api/v1/sessions/{session_id}/report", reg.svc.handleReport)
		r.Get("/api/v1/blocks", reg.svc.handleListBlocks)
	})
}
