// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

// Package source fetches donors, campaigns and contribution aggregates
// from the Nexa Fund backend export API. Fetches run concurrently, are
// retried with exponential backoff, rate limited client-side and
// guarded by a circuit breaker so a struggling backend is not hammered
// during refresh storms.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nexafund/recommender/internal/metrics"
	"github.com/nexafund/recommender/internal/models"
	"github.com/nexafund/recommender/internal/recommend"
)

// Export API paths.
const (
	donorsPath       = "/api/export/donors"
	campaignsPath    = "/api/export/campaigns"
	interactionsPath = "/api/export/interactions"
)

// errRetryable marks transport failures and retryable status codes.
var errRetryable = errors.New("retryable backend error")

// Config holds backend client configuration.
type Config struct {
	// BaseURL is the backend root, e.g. "http://backend:4000".
	BaseURL string

	// APIKey, when set, is sent as the X-API-Key header.
	APIKey string

	// Timeout bounds a single HTTP attempt. Default: 10s
	Timeout time.Duration

	// RetryAttempts is the number of tries per fetch. Default: 3
	RetryAttempts int

	// RetryInitialDelay is the first backoff delay; it doubles per
	// attempt. Default: 2s
	RetryInitialDelay time.Duration

	// RateLimit is the client-side request rate toward the backend in
	// requests per second. Default: 10
	RateLimit float64

	// RateBurst is the limiter burst size. Default: 5
	RateBurst int
}

// withDefaults fills zero values.
func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryInitialDelay <= 0 {
		c.RetryInitialDelay = 2 * time.Second
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 10
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 5
	}
	return c
}

// Client is the backend export API client.
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient creates a backend client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("source: base URL is required")
	}
	cfg = cfg.withDefaults()

	clientLogger := logger.With().Str("component", "source").Logger()

	settings := gobreaker.Settings{
		Name:    "backend-export",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			clientLogger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), breakerStateValue(to))
		},
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    gobreaker.NewCircuitBreaker[[]byte](settings),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:     clientLogger,
	}, nil
}

// FetchDataset pulls the three record sets concurrently. Donor and
// campaign failures abort the fetch; a missing interaction set only
// degrades the model to content and trending scoring, so its failure
// is tolerated.
func (c *Client) FetchDataset(ctx context.Context) (recommend.Dataset, error) {
	var dataset recommend.Dataset

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		donors, err := fetchResource[models.Donor](gctx, c, "donors", donorsPath)
		if err != nil {
			return fmt.Errorf("fetch donors: %w", err)
		}
		dataset.Donors = donors
		return nil
	})
	g.Go(func() error {
		campaigns, err := fetchResource[models.Campaign](gctx, c, "campaigns", campaignsPath)
		if err != nil {
			return fmt.Errorf("fetch campaigns: %w", err)
		}
		dataset.Campaigns = campaigns
		return nil
	})
	g.Go(func() error {
		interactions, err := fetchResource[models.Interaction](gctx, c, "interactions", interactionsPath)
		if err != nil {
			c.logger.Warn().Err(err).Msg("interactions unavailable, model will train on synthetic affinities")
			return nil
		}
		dataset.Interactions = interactions
		return nil
	})

	if err := g.Wait(); err != nil {
		return recommend.Dataset{}, err
	}

	c.logger.Info().
		Int("donors", len(dataset.Donors)).
		Int("campaigns", len(dataset.Campaigns)).
		Int("interactions", len(dataset.Interactions)).
		Msg("dataset fetched")
	return dataset, nil
}

// fetchResource fetches and decodes one resource list with retries.
func fetchResource[T any](ctx context.Context, c *Client, resource, path string) ([]T, error) {
	start := time.Now()
	body, err := c.fetchWithRetry(ctx, resource, path)
	metrics.RecordBackendFetch(resource, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return decodeResource[T](resource, body)
}

// decodeResource decodes one resource list. The export API wraps each
// list in an envelope keyed by the resource name, e.g.
// {"donors": [...]}; bare arrays are accepted as well.
func decodeResource[T any](resource string, body []byte) ([]T, error) {
	payload := bytes.TrimLeft(body, " \t\r\n")
	if len(payload) > 0 && payload[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return nil, fmt.Errorf("decode %s: %w", resource, err)
		}
		raw, ok := envelope[resource]
		if !ok {
			return nil, fmt.Errorf("decode %s: export envelope has no %q key", resource, resource)
		}
		payload = raw
	}

	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", resource, err)
	}
	return items, nil
}

// fetchWithRetry retries a fetch with exponential backoff. Retries
// cover transport errors, 5xx and 429; other client errors are
// permanent.
func (c *Client) fetchWithRetry(ctx context.Context, resource, path string) ([]byte, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.RetryInitialDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		if attempt > 1 {
			metrics.RecordBackendRetry(resource)
			c.logger.Debug().
				Str("resource", resource).
				Int("attempt", attempt).
				Msg("retrying backend fetch")
		}

		body, err := c.fetchOnce(ctx, path)
		if err != nil && !errors.Is(err, errRetryable) {
			return nil, backoff.Permanent(err)
		}
		return body, err
	}

	return backoff.RetryWithData(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.cfg.RetryAttempts-1)), ctx),
	)
}

// fetchOnce performs a single rate-limited request through the
// circuit breaker.
func (c *Client) fetchOnce(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("X-API-Key", c.cfg.APIKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errRetryable, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return io.ReadAll(resp.Body)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: backend returned %d for %s", errRetryable, resp.StatusCode, path)
		default:
			return nil, fmt.Errorf("backend returned %d for %s", resp.StatusCode, path)
		}
	})
}

// breakerStateValue maps gobreaker states to gauge values.
func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
