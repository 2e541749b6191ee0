// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries the HTTP-facing configuration.
type RouterConfig struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter builds the service's HTTP handler tree.
func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORSMiddleware(cfg.CORSOrigins))
	r.Use(RequestLogging)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(PrometheusMetrics)
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/health", handler.Health)
		r.Get("/status", handler.Status)
		r.Post("/recommendations", handler.Recommendations)
		r.Get("/campaigns/trending", handler.Trending)
		r.Post("/similar-donors", handler.SimilarDonors)
		r.Post("/refresh", handler.Refresh)
	})

	return r
}
