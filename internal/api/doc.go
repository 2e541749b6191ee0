// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

// Package api exposes the recommendation engine over HTTP using the
// Chi router. Every endpoint returns the standard envelope:
//
//	{
//	  "status": "success",
//	  "data": {...},
//	  "metadata": {"timestamp": "...", "query_time_ms": 12}
//	}
//
// Endpoints:
//
//	GET  /api/v1/health             liveness probe
//	GET  /api/v1/status             model and engine state
//	POST /api/v1/recommendations    ranked campaigns for a donor
//	GET  /api/v1/campaigns/trending anonymous trending ranking
//	POST /api/v1/similar-donors     latent-space donor neighbours
//	POST /api/v1/refresh            fetch data and rebuild the model
//	GET  /metrics                   Prometheus metrics
package api
