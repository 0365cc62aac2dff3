package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/isbaseurl/internal/config"
	"github.com/MikeSquared-Agency/isbaseurl/internal/metrics"
	"github.com/MikeSquared-Agency/isbaseurl/internal/scoring"
	"github.com/MikeSquared-Agency/isbaseurl/internal/store"
)

// NewRouter builds the public API. s may be nil, in which case nothing is
// recorded and the results endpoints are not mounted.
func NewRouter(sc *scoring.Scorer, s store.Store, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimitPerMinute))

	score := NewScoreHandler(sc, s, cfg.Server.MaxBatch, cfg.Scoring.Record, logger)
	feats := NewFeaturesHandler(sc)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/score", score.Post)
		r.Get("/score", score.Get)
		r.Post("/score/batch", score.Batch)
		r.Get("/features", feats.List)

		if s != nil {
			results := NewResultsHandler(s)
			r.Group(func(r chi.Router) {
				r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
				r.Get("/results", results.List)
				r.Get("/results/{id}", results.Get)
			})
		}
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())
	return r
}
