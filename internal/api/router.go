// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcroft/vitrine/internal/config"
	"github.com/mcroft/vitrine/internal/metrics"
	"github.com/mcroft/vitrine/internal/middleware"
)

// Router assembles the HTTP surface from the handler set and the
// server/security configuration.
type Router struct {
	handler *Handler
	cfg     *config.Config
}

// NewRouter creates a router.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup wires the full route tree with the global middleware stack.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(rt.corsMiddleware())

	// Health probes skip rate limiting so orchestrators can poll freely.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", rt.handler.Health)
		r.Get("/live", rt.handler.HealthLive)
		r.Get("/ready", rt.handler.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		if !rt.cfg.Security.RateLimitDisabled {
			r.Use(rt.rateLimiter())
		}

		r.Post("/movies/log", rt.handler.MovieLog)
		r.Get("/movies", rt.handler.Movies)
		r.Get("/movies/count", rt.handler.MovieCount)
		r.Get("/movies/{letterboxdID}", rt.handler.MovieByLetterboxdID)

		r.Get("/albums", rt.handler.Albums)

		r.Post("/cooking", rt.handler.CookingCreate)
		r.Get("/cooking", rt.handler.CookingList)
		r.Get("/cooking/allowed", rt.handler.CookingAllowed)
	})

	return r
}

func (rt *Router) corsMiddleware() func(http.Handler) http.Handler {
	origins := rt.cfg.Security.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", rt.cfg.Webhook.SecretHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

func (rt *Router) rateLimiter() func(http.Handler) http.Handler {
	return httprate.Limit(
		rt.cfg.Security.RateLimitReqs,
		rt.cfg.Security.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
			rw := NewResponseWriter(w, r)
			rw.Error(http.StatusTooManyRequests, ErrCodeRateLimit, "rate limit exceeded")
		}),
	)
}
