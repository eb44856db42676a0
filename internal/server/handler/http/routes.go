// Package http provides the HTTP routing and handlers of the portfolio
// server: the public asset and content routes, health, and the admin API.
package http

import (
	"net/http"

	"github.com/SRAS2024/About-Me/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// portfolio.
//
// Routes:
//
//	GET    /health                     → healthHandler.Health
//	GET    /assets/photo               → publicHandler.Photo
//	GET    /assets/resume              → publicHandler.Resume
//	GET    /api/content                → publicHandler.Content
//	GET    /admin/api/state            → adminHandler.State
//	PUT    /admin/api/links            → adminHandler.ReplaceLinks
//	PUT    /admin/api/traits           → adminHandler.ReplaceTraits
//	PUT    /admin/api/accomplishments  → adminHandler.ReplaceAccomplishments
//	POST   /admin/api/photo            → adminHandler.UploadPhoto
//	DELETE /admin/api/photo            → adminHandler.DeletePhoto
//	POST   /admin/api/resume           → adminHandler.UploadResume
//	DELETE /admin/api/resume           → adminHandler.DeleteResume
//
// Middleware chain (applied in order):
//  1. RequestID, RealIP, Recoverer (chi)
//  2. WithRequestLogging(logger)
//  3. adminAuth then dbGate, on /admin/api only
func NewRouter(
	healthHandler *HealthHandler,
	publicHandler *PublicHandler,
	adminHandler *AdminHandler,
	adminAuth func(http.Handler) http.Handler,
	dbGate func(http.Handler) http.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/health", healthHandler.Health)

	r.Get("/assets/photo", publicHandler.Photo)
	r.Get("/assets/resume", publicHandler.Resume)
	r.Get("/api/content", publicHandler.Content)

	r.Route("/admin/api", func(r chi.Router) {
		r.Use(adminAuth)
		r.Use(dbGate)

		r.Get("/state", adminHandler.State)
		r.Put("/links", adminHandler.ReplaceLinks)
		r.Put("/traits", adminHandler.ReplaceTraits)
		r.Put("/accomplishments", adminHandler.ReplaceAccomplishments)
		r.Post("/photo", adminHandler.UploadPhoto)
		r.Delete("/photo", adminHandler.DeletePhoto)
		r.Post("/resume", adminHandler.UploadResume)
		r.Delete("/resume", adminHandler.DeleteResume)
	})

	return r
}
