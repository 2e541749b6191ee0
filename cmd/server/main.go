// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

// Package main is the entry point for the Nexa Fund recommender
// service.
//
// The service pulls donors, campaigns and interactions from the Nexa
// Fund backend export API, builds a hybrid recommendation model
// (interest, collaborative, content and trending signals) and serves
// ranked campaigns over a REST API.
//
// Startup order:
//
//  1. Configuration: layered Koanf sources (defaults, YAML, env)
//  2. Logging: global zerolog logger
//  3. Backend client: retrying, rate-limited export API client
//  4. Engine: empty until the first refresh completes
//  5. Supervision tree: refresh loop and HTTP server under suture
//
// The server shuts down gracefully on SIGINT and SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/nexafund/recommender/internal/api"
	"github.com/nexafund/recommender/internal/config"
	"github.com/nexafund/recommender/internal/logging"
	"github.com/nexafund/recommender/internal/recommend"
	"github.com/nexafund/recommender/internal/source"
	"github.com/nexafund/recommender/internal/supervisor"
	"github.com/nexafund/recommender/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("service failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logger.Info().
		Str("backend", cfg.Backend.URL).
		Int("port", cfg.Server.Port).
		Dur("refresh_interval", cfg.Refresh.Interval).
		Msg("starting nexafund recommender")

	client, err := source.NewClient(source.Config{
		BaseURL:           cfg.Backend.URL,
		APIKey:            cfg.Backend.APIKey,
		Timeout:           cfg.Backend.Timeout,
		RetryAttempts:     cfg.Backend.RetryAttempts,
		RetryInitialDelay: cfg.Backend.RetryInitialDelay,
		RateLimit:         cfg.Backend.RateLimit,
		RateBurst:         cfg.Backend.RateBurst,
	}, logger)
	if err != nil {
		return fmt.Errorf("create backend client: %w", err)
	}

	engine, err := recommend.NewEngine(cfg.Recommend, logger)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	refreshSvc := services.NewRefreshService(client, engine, services.RefreshServiceConfig{
		OnStartup: cfg.Refresh.OnStartup,
		Interval:  cfg.Refresh.Interval,
		Timeout:   cfg.Refresh.Timeout,
	}, logger)

	handler := api.NewHandler(engine, refreshSvc.Refresh)
	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.Server.RateLimitRequests,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervision tree: %w", err)
	}
	tree.AddModelService(refreshSvc)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", server.Addr).Msg("serving")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervision tree stopped: %w", err)
	}

	logger.Info().Msg("shutdown complete")
	return nil
}
