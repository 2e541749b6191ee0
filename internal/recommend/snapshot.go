// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/nexafund/recommender/internal/models"
)

// modelSnapshot is one immutable, fully built model. All ranking reads
// go against a snapshot; a refresh builds a new one and swaps it in
// atomically, so readers never see partially rebuilt state.
//
// Row i of the interaction matrix and the donor embedding matrix
// always refer to donors[i]; same for campaign columns. That
// positional alignment is established here and must survive through
// factorization and scoring.
type modelSnapshot struct {
	version int64
	builtAt time.Time

	donors    []models.Donor
	campaigns []models.Campaign

	donorIndex    map[string]int
	campaignIndex map[string]int

	emb         *embeddings
	matrix      *mat.Dense
	matrixStats MatrixStats
	factors     *factorization

	// factorizationErr records why the collaborative model is
	// unavailable, for the status endpoint. Nil when available.
	factorizationErr error
}

// buildSnapshot runs the full model pipeline: embeddings, interaction
// matrix, factorization. Factorization failure is not fatal; the
// snapshot is still served with the collaborative signal disabled.
func buildSnapshot(cfg Config, data Dataset, version int64, now time.Time) *modelSnapshot {
	s := &modelSnapshot{
		version:       version,
		builtAt:       now,
		donors:        data.Donors,
		campaigns:     data.Campaigns,
		donorIndex:    make(map[string]int, len(data.Donors)),
		campaignIndex: make(map[string]int, len(data.Campaigns)),
		factors:       unavailableFactorization(),
	}
	for i, d := range data.Donors {
		s.donorIndex[d.ID] = i
	}
	for j, c := range data.Campaigns {
		s.campaignIndex[c.ID] = j
	}

	s.emb = buildEmbeddings(cfg.Embedding, data.Donors, data.Campaigns)
	s.matrix, s.matrixStats = buildInteractionMatrix(
		cfg.Matrix, cfg.Affinity,
		data.Donors, data.Campaigns, data.Interactions,
		s.emb, s.donorIndex, s.campaignIndex,
	)

	factors, err := fitFactorization(cfg.Factorization, s.matrix)
	s.factors = factors
	s.factorizationErr = err

	return s
}

// status summarizes the snapshot.
func (s *modelSnapshot) status() Status {
	st := Status{
		ModelLoaded:  true,
		ModelVersion: s.version,
		BuiltAt:      s.builtAt,
		Donors:       len(s.donors),
		Campaigns:    len(s.campaigns),
		EmbeddingDim: s.emb.dim,
		Matrix:       s.matrixStats,
	}
	if s.factors.available {
		st.Factorization = FactorizationStatus{
			Available:           true,
			Rank:                s.factors.rank,
			Iterations:          s.factors.iterations,
			ReconstructionError: s.factors.reconstructionError,
		}
	}
	return st
}
