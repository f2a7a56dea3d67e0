package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// CORS: the submit endpoint is called from arbitrary customer sites,
	// so origins come from config rather than a hardcoded list.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Origin"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/submit", h.SubmitForm)
		r.Get("/activate/{token}", h.Activate)

		r.Route("/info", func(r chi.Router) {
			r.Get("/analytics", h.GetAnalytics)
			r.Get("/origins", h.ListOrigins)
			r.Get("/origin/{key}", h.GetOrigin)
			r.Get("/activity", h.GetActivity)
			r.Get("/stats", h.GetStats)
		})
	})

	return r
}
