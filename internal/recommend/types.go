// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import (
	"time"

	"github.com/nexafund/recommender/internal/models"
)

// Dataset is one complete pull of the backend record sets. The engine
// rebuilds its whole model from a dataset on each refresh.
type Dataset struct {
	Donors       []models.Donor
	Campaigns    []models.Campaign
	Interactions []models.Interaction
}

// Mode selects the weight set applied by the ranker.
type Mode string

const (
	// ModePersonalized uses the full four-signal weight set. Requires
	// a known donor with a non-empty interest list.
	ModePersonalized Mode = "personalized"

	// ModeFallback serves logged-in donors without usable preferences:
	// collaborative, content and trending only.
	ModeFallback Mode = "fallback"

	// ModeTrending serves anonymous requests from the trending signal
	// alone.
	ModeTrending Mode = "trending"
)

// Request is one ranking request.
type Request struct {
	// DonorID may be empty for anonymous (trending-only) requests.
	DonorID string

	// Preferences optionally personalizes the ranking. Ignored for
	// anonymous requests.
	Preferences *models.UserPreferences

	// TopN bounds the result count; 0 uses the configured default.
	TopN int
}

// FactorizationStatus reports the collaborative model state.
type FactorizationStatus struct {
	Available           bool    `json:"available"`
	Rank                int     `json:"rank,omitempty"`
	Iterations          int     `json:"iterations,omitempty"`
	ReconstructionError float64 `json:"reconstruction_error,omitempty"`
}

// Status is the engine state exposed on the status endpoint.
type Status struct {
	ModelLoaded   bool                `json:"model_loaded"`
	ModelVersion  int64               `json:"model_version"`
	BuiltAt       time.Time           `json:"built_at"`
	Donors        int                 `json:"donors"`
	Campaigns     int                 `json:"campaigns"`
	EmbeddingDim  int                 `json:"embedding_dim"`
	Matrix        MatrixStats         `json:"matrix"`
	Factorization FactorizationStatus `json:"factorization"`
	RankRequests  int64               `json:"rank_requests"`
	LastRefresh   time.Time           `json:"last_refresh"`
}
