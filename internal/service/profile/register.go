package profile

import (
	"github.com/go-chi/chi/v5"

	"github.com/sevenpm/date-backend/internal/app"
	"github.com/sevenpm/date-backend/internal/middleware"
	"github.com/sevenpm/date-backend/internal/storage"
)

// Registrar ties the Profile service into the HTTP router
type Registrar struct {
	svc       *Service
	validator middleware.TokenValidator
}

// NewRegistrar creates a new Registrar for the Profile service
func NewRegistrar(appCtx *app.AppContext, photos *storage.PhotoStore, validator middleware.TokenValidator) *Registrar {
	return &Registrar{
		svc:       NewProfileService(appCtx, photos),
		validator: validator,
	}
}

// Service exposes the underlying service for use by matchmaking snapshots.
func (r *Registrar) Service() *Service { return r.svc }

// Register attaches the Profile routes to the router
func (reg *Registrar) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(reg.validator))
		r.Get("/api/v1/profile", reg.svc.handleGet)
		r.Put("/api/v1/profile", reg.svc.handleUpsert)
		r.Post("/api/v1/photos/upload", reg.svc.handlePresignUpload)
		r.Get("/api/v1/photos", reg.svc.handleListPhotos)
		r.Delete("/api/v1/photos/{photo_id}", reg.svc.handleDeletePhoto)
	})
}
