package auth

import (
	"github.com/go-chi/chi/v5"

	"github.com/sevenpm/date-backend/internal/app"
	"github.com/sevenpm/date-backend/internal/middleware"
)

// Registrar ties the Auth service into the HTTP router
type Registrar struct {
	svc *Service
}

// NewRegistrar creates a new Registrar for the Auth service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewAuthService(appCtx)}
}

// Service exposes the underlying service so other registrars can reuse it as
// the token validator.
func (r *Registrar) Service() *Service { return r.svc }

// Register attaches the Auth routes to the router. Full paths rather than a
// mounted subrouter: every service shares the /api/v1 prefix.
func (reg *Registrar) Register(r chi.Router) {
	r.Post("/api/v1/auth/signup", reg.svc.handleSignup)
	r.Post("/api/v1/auth/login", reg.svc.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(reg.svc))
		r.Put("/api/v1/devices", reg.svc.handleRegisterDevice)
	})
}
