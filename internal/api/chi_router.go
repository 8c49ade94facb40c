// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/rewound/internal/cache"
	"github.com/tomtom215/rewound/internal/config"
	"github.com/tomtom215/rewound/internal/middleware"
)

// Router sets up HTTP routes using the Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	shareLimiter  *cache.RateLimitStore
}

// NewRouter creates a router around the given handler. The share-lookup
// rate limiter is built from the share configuration; CORS and the global
// API rate limit come from the server configuration.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	shareLimiter := cache.NewRateLimitStore(cache.RateLimitConfig{
		Window: cfg.Share.RateLimitWindow,
		Limit:  int64(cfg.Share.RateLimitReqs),
	})

	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddlewareFromConfig(&cfg.Server),
		shareLimiter:  shareLimiter,
	}
}

// SetupChi configures all HTTP routes using the Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(middleware.RequestID)        // Add X-Request-ID header with logging context
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.Compression)      // gzip response bodies

	// Consistent envelopes for unmatched routes and methods.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// ========================
	// Health Endpoints
	// ========================
	// Permissive rate limiting so monitoring can poll freely
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// ========================
	// Report, Share, and Sync Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/rewind/users/{userID}", router.handler.RewindUser)
		r.Get("/rewind/server", router.handler.RewindServer)

		r.Route("/shares", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/", router.handler.ShareCreate)
			r.With(router.chiMiddleware.RateLimitWrite()).Delete("/{id}", router.handler.ShareRevoke)

			// The public lookup path gets its own sliding-window limiter
			// keyed by IP to damp token guessing.
			r.With(router.shareLookupLimit()).Get("/{token}", router.handler.ShareLookup)
		})

		r.Get("/sync/status", router.handler.SyncStatus)
		r.With(router.chiMiddleware.RateLimitSync()).Post("/sync/run", router.handler.SyncRun)
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// shareLookupLimit wraps the share-token limiter with the standard error
// envelope for rejected requests.
func (router *Router) shareLookupLimit() func(http.Handler) http.Handler {
	return middleware.ShareRateLimit(router.shareLimiter, func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many share lookups", nil)
	})
}
