// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nexafund/recommender/internal/logging"
	"github.com/nexafund/recommender/internal/models"
	"github.com/nexafund/recommender/internal/recommend"
)

// Engine is the ranking surface the handlers need. Satisfied by
// *recommend.Engine.
type Engine interface {
	Rank(ctx context.Context, req recommend.Request) ([]models.ScoredCampaign, error)
	Trending(ctx context.Context, topN int) ([]models.ScoredCampaign, error)
	SimilarDonors(ctx context.Context, donorID string, topN int) ([]models.SimilarDonor, error)
	Status() recommend.Status
	ModelLoaded() bool
}

// Refresher fetches a fresh dataset and rebuilds the model. Wired to
// the supervisor's refresh service so manual and scheduled refreshes
// share one code path.
type Refresher func(ctx context.Context) error

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	engine  Engine
	refresh Refresher
}

// NewHandler creates a Handler. refresh may be nil, in which case the
// refresh endpoint reports UPSTREAM_ERROR.
func NewHandler(engine Engine, refresh Refresher) *Handler {
	return &Handler{engine: engine, refresh: refresh}
}

// Health is the liveness probe. Always 200; model state is informative
// only so orchestrators do not kill a warming-up instance.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"model_loaded": h.engine.ModelLoaded(),
	}, time.Now())
}

// Status reports the engine and model state.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, h.engine.Status(), start)
}

// Recommendations ranks campaigns for a donor. Anonymous requests
// (empty donor_id) are served from the trending signal.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req RecommendationsRequest
	if apiErr := decodeJSONBody(r, &req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	results, err := h.engine.Rank(r.Context(), recommend.Request{
		DonorID:     req.DonorID,
		Preferences: req.Preferences,
		TopN:        req.TopK,
	})
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("donor_id", sanitizeLogValue(req.DonorID)).
		Int("results", len(results)).
		Msg("recommendations served")

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"donor_id":        req.DonorID,
		"recommendations": results,
	}, start)
}

// Trending returns active campaigns ranked by the trending signal.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit := getIntParam(r, "limit", 0)
	if limit < 0 || limit > 100 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be in [0,100]", nil)
		return
	}

	results, err := h.engine.Trending(r.Context(), limit)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"campaigns": results,
	}, start)
}

// SimilarDonors returns the latent-space neighbours of a donor.
func (h *Handler) SimilarDonors(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req SimilarDonorsRequest
	if apiErr := decodeJSONBody(r, &req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	results, err := h.engine.SimilarDonors(r.Context(), req.DonorID, req.TopK)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"donor_id":       req.DonorID,
		"similar_donors": results,
	}, start)
}

// Refresh triggers a synchronous fetch-and-rebuild cycle.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.refresh == nil {
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Refresh is not configured", nil)
		return
	}

	if err := h.refresh(r.Context()); err != nil {
		if errors.Is(err, recommend.ErrRefreshInProgress) {
			respondError(w, http.StatusConflict, "REFRESH_IN_PROGRESS", "A model refresh is already running", nil)
			return
		}
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to refresh model from backend", err)
		return
	}

	respondSuccess(w, http.StatusOK, h.engine.Status(), start)
}

// respondEngineError maps engine errors to HTTP status codes.
func (h *Handler) respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recommend.ErrNoModel):
		respondError(w, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE", "Model has not been built yet", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "TIMEOUT", "Request cancelled or timed out", err)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", err)
	}
}
