package rsvp

import (
	"github.com/go-chi/chi/v5"

	"github.com/sevenpm/date-backend/internal/app"
	"github.com/sevenpm/date-backend/internal/middleware"
)

// Registrar ties the RSVP service into the HTTP router
type Registrar struct {
	svc       *Service
	validator middleware.TokenValidator
}

// NewRegistrar creates a new Registrar for the RSVP service
func NewRegistrar(appCtx *app.AppContext, validator middleware.TokenValidator) *Registrar {
	return &Registrar{
		svc:       NewRSVPService(appCtx),
		validator: validator,
	}
}

// Register attaches the RSVP routes to the router
func (reg *Registrar) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(reg.validator))
		r.Put("/api/v1/rsvp", reg.svc.handleOptIn)
		r.Get("/api/v1/rsvp", reg.svc.handleStatus)
	})
}
