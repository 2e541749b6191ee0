// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

// Package metrics provides Prometheus instrumentation for the
// recommender: API latency and throughput, model refresh outcomes,
// ranking volume per mode and backend fetch health.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Ranking Metrics
	RankRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rank_requests_total",
			Help: "Total number of ranking requests by recommendation mode",
		},
		[]string{"mode"}, // "personalized", "fallback", "trending"
	)

	RankDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rank_duration_seconds",
			Help:    "Duration of ranking computations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// Model Refresh Metrics
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_refresh_duration_seconds",
			Help:    "Duration of model snapshot rebuilds in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_refresh_total",
			Help: "Total number of model refreshes by collaborative outcome",
		},
		[]string{"factorization"}, // "fitted", "unavailable"
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_version",
			Help: "Version of the model snapshot currently served",
		},
	)

	ModelDonors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_donors",
			Help: "Number of donors in the current model snapshot",
		},
	)

	ModelCampaigns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_campaigns",
			Help: "Number of campaigns in the current model snapshot",
		},
	)

	ModelMatrixSparsity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_matrix_sparsity",
			Help: "Sparsity ratio of the current interaction matrix",
		},
	)

	// Backend Fetch Metrics
	BackendFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_fetch_duration_seconds",
			Help:    "Duration of backend export API fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource"}, // "donors", "campaigns", "interactions"
	)

	BackendFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_fetch_errors_total",
			Help: "Total number of failed backend fetches after retries",
		},
		[]string{"resource"},
	)

	BackendRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_fetch_retries_total",
			Help: "Total number of backend fetch retry attempts",
		},
		[]string{"resource"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRankRequest records one ranking computation.
func RecordRankRequest(mode string, duration time.Duration) {
	RankRequestsTotal.WithLabelValues(mode).Inc()
	RankDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordModelRefresh records a snapshot rebuild and whether the
// factorization fitted.
func RecordModelRefresh(duration time.Duration, factorized bool) {
	RefreshDuration.Observe(duration.Seconds())
	outcome := "fitted"
	if !factorized {
		outcome = "unavailable"
	}
	RefreshTotal.WithLabelValues(outcome).Inc()
}

// UpdateModelGauges publishes the served snapshot's shape.
func UpdateModelGauges(version int64, donors, campaigns int, sparsity float64) {
	ModelVersion.Set(float64(version))
	ModelDonors.Set(float64(donors))
	ModelCampaigns.Set(float64(campaigns))
	ModelMatrixSparsity.Set(sparsity)
}

// RecordBackendFetch records one backend fetch outcome.
func RecordBackendFetch(resource string, duration time.Duration, err error) {
	BackendFetchDuration.WithLabelValues(resource).Observe(duration.Seconds())
	if err != nil {
		BackendFetchErrors.WithLabelValues(resource).Inc()
	}
}

// RecordBackendRetry records one retry attempt.
func RecordBackendRetry(resource string) {
	BackendRetries.WithLabelValues(resource).Inc()
}

// RecordCircuitBreakerTransition records a breaker state change and
// updates the state gauge.
func RecordCircuitBreakerTransition(name, from, to string, toValue float64) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(toValue)
}

// RecordRateLimitHit records a rejected request.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}
