// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package api

import "github.com/nexafund/recommender/internal/models"

// RecommendationsRequest is the POST /api/v1/recommendations payload.
// An empty DonorID requests the anonymous trending ranking.
type RecommendationsRequest struct {
	DonorID     string                  `json:"donor_id" validate:"omitempty,max=100"`
	TopK        int                     `json:"top_k" validate:"min=0,max=100"`
	Preferences *models.UserPreferences `json:"preferences" validate:"omitempty"`
}

// SimilarDonorsRequest is the POST /api/v1/similar-donors payload.
type SimilarDonorsRequest struct {
	DonorID string `json:"donor_id" validate:"required,max=100"`
	TopK    int    `json:"top_k" validate:"min=0,max=100"`
}
