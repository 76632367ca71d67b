package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(a Analyzer, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	results := NewResultsHandler(a, logger)
	explain := NewExplainHandler(a)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stakeholders", results.Stakeholders)
		r.Get("/weights", results.Weights)
		r.Post("/weights", results.ComputeWeights)
		r.Get("/scenarios/{scenario}/indicators", results.Indicators)
		r.Get("/scenarios/{scenario}/explain/{stakeholder}", explain.Explain)
		r.Get("/results/{stakeholder}", results.Results)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Post("/runs", results.Run)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
