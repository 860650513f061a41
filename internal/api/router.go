// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

// Package api exposes recommendations, best sellers and customer segments
// as a JSON HTTP API built on the chi router.
//
// Every response uses the models.APIResponse envelope. Routes:
//
//	GET /api/v1/recommendations/clients/{clientID}
//	GET /api/v1/products/best-sellers?n=
//	GET /api/v1/clients
//	GET /api/v1/clients/{clientID}/segment
//	GET /health
//	GET /metrics
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/shopsense/internal/middleware"
)

// RouterConfig holds transport settings for the router.
type RouterConfig struct {
	// CORSOrigins lists allowed origins. Empty disables cross-origin access.
	CORSOrigins []string

	// RateLimitRequests per RateLimitWindow per client IP. 0 disables
	// rate limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// DefaultRouterConfig returns the router defaults.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		CORSOrigins:       []string{},
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	}
}

// NewRouter builds the HTTP handler for h.
func NewRouter(h *Handler, cfg *RouterConfig) http.Handler {
	if cfg == nil {
		cfg = DefaultRouterConfig()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         86400,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(cfg))
		r.Use(middleware.PrometheusMetrics)

		r.Get("/recommendations/clients/{clientID}", h.ClientRecommendations)
		r.Get("/products/best-sellers", h.BestSellers)
		r.Get("/clients", h.Clients)
		r.Get("/clients/{clientID}/segment", h.ClientSegment)
	})

	return r
}

func rateLimit(cfg *RouterConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitRequests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, r, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests", nil)
		}),
	)
}
