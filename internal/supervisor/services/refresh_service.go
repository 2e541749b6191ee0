// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nexafund/recommender/internal/recommend"
)

// DatasetFetcher pulls one complete dataset from the backend.
// Satisfied by *source.Client.
type DatasetFetcher interface {
	FetchDataset(ctx context.Context) (recommend.Dataset, error)
}

// ModelRefresher rebuilds the model from a dataset. Satisfied by
// *recommend.Engine.
type ModelRefresher interface {
	Refresh(ctx context.Context, data recommend.Dataset) error
}

// RefreshServiceConfig holds refresh loop configuration.
type RefreshServiceConfig struct {
	// OnStartup triggers a refresh as soon as the service starts.
	OnStartup bool

	// Interval is the periodic refresh cadence. 0 disables the ticker.
	Interval time.Duration

	// Timeout bounds one fetch-and-rebuild cycle.
	Timeout time.Duration
}

// RefreshService keeps the model current: an optional refresh at
// startup, then periodic rebuilds. A failed cycle keeps the previous
// snapshot serving; the next tick retries.
type RefreshService struct {
	fetcher DatasetFetcher
	engine  ModelRefresher
	config  RefreshServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewRefreshService creates the refresh loop service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRefreshService(fetcher DatasetFetcher, engine ModelRefresher, cfg RefreshServiceConfig, logger zerolog.Logger) *RefreshService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &RefreshService{
		fetcher: fetcher,
		engine:  engine,
		config:  cfg,
		logger:  logger.With().Str("service", "refresh").Logger(),
		name:    "refresh-service",
	}
}

// Serve implements the suture.Service interface.
func (s *RefreshService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Msg("refresh service starting")

	if s.config.OnStartup {
		if err := s.Refresh(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("startup refresh failed, serving without a model until next cycle")
		}
	}

	if s.config.Interval <= 0 {
		s.logger.Info().Msg("periodic refresh disabled, waiting for manual triggers")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("refresh service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled refresh failed, keeping previous model")
			}
		}
	}
}

// Refresh runs one fetch-and-rebuild cycle. Shared by the periodic
// loop and the manual refresh endpoint.
func (s *RefreshService) Refresh(ctx context.Context) error {
	cycleCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	s.logger.Info().Msg("starting model refresh cycle")

	data, err := s.fetcher.FetchDataset(cycleCtx)
	if err != nil {
		return fmt.Errorf("fetch dataset: %w", err)
	}

	if err := s.engine.Refresh(cycleCtx, data); err != nil {
		return fmt.Errorf("rebuild model: %w", err)
	}

	s.logger.Info().
		Dur("duration", time.Since(start)).
		Msg("model refresh cycle complete")
	return nil
}

// String returns the service name for logging.
func (s *RefreshService) String() string {
	return s.name
}
