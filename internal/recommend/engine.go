// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/nexafund/recommender/internal/metrics"
	"github.com/nexafund/recommender/internal/models"
)

// ErrRefreshInProgress indicates a concurrent refresh holds the
// rebuild lock.
var ErrRefreshInProgress = errors.New("recommend: refresh already in progress")

// Engine is the recommendation engine. Reads are lock-free against an
// atomically swapped model snapshot; Refresh is exclusive.
type Engine struct {
	cfg    Config
	logger zerolog.Logger

	snapshot atomic.Pointer[modelSnapshot]

	// refreshMu serializes snapshot rebuilds. Readers never take it.
	refreshMu sync.Mutex

	version     atomic.Int64
	rankCount   atomic.Int64
	lastRefresh atomic.Int64 // unix nanos, 0 = never

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewEngine validates the configuration, normalizes the weight sets
// and returns an engine with no model loaded.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg Config, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}
	cfg.Personalized.Normalize()
	cfg.Fallback.Normalize()

	return &Engine{
		cfg:    cfg,
		logger: logger.With().Str("component", "engine").Logger(),
		now:    time.Now,
	}, nil
}

// Refresh builds a complete new model snapshot from the dataset and
// swaps it in. In-flight ranking requests keep reading the previous
// snapshot until the swap. Returns ErrRefreshInProgress when another
// refresh holds the rebuild lock; a failed factorization does not fail
// the refresh, it only disables the collaborative signal.
func (e *Engine) Refresh(ctx context.Context, data Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !e.refreshMu.TryLock() {
		return ErrRefreshInProgress
	}
	defer e.refreshMu.Unlock()

	start := e.now()
	version := e.version.Add(1)

	e.logger.Info().
		Int64("version", version).
		Int("donors", len(data.Donors)).
		Int("campaigns", len(data.Campaigns)).
		Int("interactions", len(data.Interactions)).
		Msg("building model snapshot")

	snap := buildSnapshot(e.cfg, data, version, start)

	stats := snap.matrixStats
	e.logger.Info().
		Str("source", stats.Source).
		Int("non_zero", stats.NonZero).
		Float64("sparsity", stats.Sparsity).
		Float64("min", stats.Min).
		Float64("max", stats.Max).
		Float64("mean", stats.Mean).
		Msg("interaction matrix built")

	if snap.factorizationErr != nil {
		e.logger.Warn().
			Err(snap.factorizationErr).
			Msg("factorization unavailable, collaborative scoring disabled")
	} else {
		e.logger.Info().
			Int("rank", snap.factors.rank).
			Int("iterations", snap.factors.iterations).
			Float64("reconstruction_error", snap.factors.reconstructionError).
			Msg("factorization fitted")
	}

	e.snapshot.Store(snap)
	e.lastRefresh.Store(start.UnixNano())

	duration := e.now().Sub(start)
	metrics.RecordModelRefresh(duration, snap.factorizationErr == nil)
	metrics.UpdateModelGauges(version, len(data.Donors), len(data.Campaigns), stats.Sparsity)

	e.logger.Info().
		Int64("version", version).
		Dur("duration", duration).
		Msg("model snapshot swapped in")
	return nil
}

// Rank scores and orders campaigns for one request. An unknown donor
// yields an empty result rather than an error; an anonymous request
// (empty donor id) is served from the trending signal alone.
func (e *Engine) Rank(ctx context.Context, req Request) ([]models.ScoredCampaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNoModel
	}

	start := e.now()
	e.rankCount.Add(1)

	mode := selectMode(req.DonorID, req.Preferences)
	if req.DonorID != "" {
		if _, ok := snap.donorIndex[req.DonorID]; !ok {
			e.logger.Debug().Str("donor_id", req.DonorID).Msg("unknown donor, returning empty ranking")
			metrics.RecordRankRequest(string(mode), e.now().Sub(start))
			return []models.ScoredCampaign{}, nil
		}
	}

	results := snap.rank(mode, req.DonorID, req.Preferences, e.weightsFor(mode), e.clampTopN(req.TopN), start)
	metrics.RecordRankRequest(string(mode), e.now().Sub(start))
	return results, nil
}

// Trending serves the anonymous entry point: active campaigns ranked
// by the trending signal alone.
func (e *Engine) Trending(ctx context.Context, topN int) ([]models.ScoredCampaign, error) {
	return e.Rank(ctx, Request{TopN: topN})
}

// SimilarDonors returns donors closest to the given donor in latent
// factor space. Empty when the donor is unknown, the factorization is
// unavailable or the model holds a single donor.
func (e *Engine) SimilarDonors(ctx context.Context, donorID string, topN int) ([]models.SimilarDonor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNoModel
	}

	results := snap.similarDonors(donorID, e.clampTopN(topN))
	if results == nil {
		results = []models.SimilarDonor{}
	}
	return results, nil
}

// Status reports the current engine state.
func (e *Engine) Status() Status {
	var st Status
	if snap := e.snapshot.Load(); snap != nil {
		st = snap.status()
	} else {
		st.Matrix.Sparsity = 1
	}
	st.RankRequests = e.rankCount.Load()
	if nanos := e.lastRefresh.Load(); nanos != 0 {
		st.LastRefresh = time.Unix(0, nanos)
	}
	return st
}

// ModelLoaded reports whether a snapshot is being served.
func (e *Engine) ModelLoaded() bool {
	return e.snapshot.Load() != nil
}

// weightsFor resolves the active weight set for a mode.
func (e *Engine) weightsFor(mode Mode) Weights {
	switch mode {
	case ModePersonalized:
		return e.cfg.Personalized
	case ModeFallback:
		return e.cfg.Fallback
	default:
		return Weights{Trending: 1}
	}
}

// clampTopN applies the configured default and upper bound.
func (e *Engine) clampTopN(n int) int {
	if n <= 0 {
		return e.cfg.DefaultTopN
	}
	if n > e.cfg.MaxTopN {
		return e.cfg.MaxTopN
	}
	return n
}
