package matchmaking

import (
	"github.com/go-chi/chi/v5"

	"github.com/sevenpm/date-backend/internal/middleware"
)

// Registrar ties the Matchmaking service into the HTTP router
type Registrar struct {
	svc       *Service
	validator middleware.TokenValidator
}

// NewRegistrar creates a new Registrar for the Matchmaking service
func NewRegistrar(svc *Service, validator middleware.TokenValidator) *Registrar {
	return &Registrar{svc: svc, validator: validator}
}

// Register attaches the Matchmaking routes to the router
func (reg *Registrar) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(reg.validator))
		r.Post("/api/v1/match", reg.svc.handleMatch)
	})
}
