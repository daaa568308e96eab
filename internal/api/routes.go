package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/ummalqura-api/internal/config"
	"github.com/zapponejosh/ummalqura-api/internal/metrics"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET  /health
//	GET  /metrics
//	GET  /api/v1/hijri/today
//	GET  /api/v1/hijri/date/{date}
//	GET  /api/v1/hijri/range?start=&end=
//	GET  /api/v1/gregorian/{year}/{month}/{day}
//	GET  /api/v1/years/{year}
//	GET  /api/v1/calendar
//	GET  /api/v1/calendar/{year}.ics
//	GET  /api/v1/admin/tables         (API key)
//	POST /api/v1/admin/tables         (API key)
func SetupRoutes(handlers *Handlers, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)
	if m != nil {
		r.Use(m.Middleware)
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
	})

	// ==========================================================================
	// Public routes
	// ==========================================================================
	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/hijri/today", handlers.GetToday)
		r.Get("/hijri/date/{date}", handlers.GetDate)
		r.Get("/hijri/range", handlers.GetRange)
		r.Get("/gregorian/{year}/{month}/{day}", handlers.GetGregorian)
		r.Get("/years/{year}", handlers.GetYear)
		r.Get("/calendar", handlers.GetCalendarInfo)
		r.Get("/calendar/{year}.ics", handlers.GetCalendarFeed)

		// ======================================================================
		// Admin routes (API key)
		// ======================================================================
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg, logger))
			r.Get("/admin/tables", handlers.ListTables)
			r.Post("/admin/tables", handlers.ImportTable)
		})
	})

	return r
}
