// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

// Package config loads and validates service configuration from
// layered sources: built-in defaults, an optional YAML file and
// environment variables, in increasing priority.
package config

import (
	"fmt"
	"time"

	"github.com/nexafund/recommender/internal/recommend"
)

// Config is the root service configuration.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Backend   BackendConfig    `koanf:"backend"`
	Refresh   RefreshConfig    `koanf:"refresh"`
	Recommend recommend.Config `koanf:"recommend"`
	Logging   LoggingConfig    `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Host is the bind address. Default: 0.0.0.0
	Host string `koanf:"host"`

	// Port is the listen port. Default: 8090
	Port int `koanf:"port"`

	// Timeout bounds request handling. Default: 30s
	Timeout time.Duration `koanf:"timeout"`

	// CORSOrigins lists allowed origins. Default: ["*"]
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests allows this many requests per window per
	// client IP. 0 disables rate limiting. Default: 100
	RateLimitRequests int `koanf:"rate_limit_requests"`

	// RateLimitWindow is the rate limit window. Default: 1m
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// BackendConfig configures the Nexa Fund export API client.
type BackendConfig struct {
	// URL is the backend root, e.g. "http://backend:4000".
	URL string `koanf:"url"`

	// APIKey is sent as X-API-Key when set.
	APIKey string `koanf:"api_key"`

	// Timeout bounds a single fetch attempt. Default: 10s
	Timeout time.Duration `koanf:"timeout"`

	// RetryAttempts is the number of tries per fetch. Default: 3
	RetryAttempts int `koanf:"retry_attempts"`

	// RetryInitialDelay is the first backoff delay. Default: 2s
	RetryInitialDelay time.Duration `koanf:"retry_initial_delay"`

	// RateLimit caps requests per second toward the backend. Default: 10
	RateLimit float64 `koanf:"rate_limit"`

	// RateBurst is the limiter burst. Default: 5
	RateBurst int `koanf:"rate_burst"`
}

// RefreshConfig configures model rebuild scheduling.
type RefreshConfig struct {
	// OnStartup triggers a refresh as soon as the service starts.
	// Default: true
	OnStartup bool `koanf:"on_startup"`

	// Interval is the periodic refresh cadence. 0 disables periodic
	// refreshes. Default: 1h
	Interval time.Duration `koanf:"interval"`

	// Timeout bounds one fetch-and-rebuild cycle. Default: 5m
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	// Level: trace, debug, info, warn, error. Default: info
	Level string `koanf:"level"`

	// Format: json or console. Default: json
	Format string `koanf:"format"`

	// Caller includes file and line in log output. Default: false
	Caller bool `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, applied before file and
// environment overrides.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8090,
			Timeout:           30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Backend: BackendConfig{
			URL:               "",
			APIKey:            "",
			Timeout:           10 * time.Second,
			RetryAttempts:     3,
			RetryInitialDelay: 2 * time.Second,
			RateLimit:         10,
			RateBurst:         5,
		},
		Refresh: RefreshConfig{
			OnStartup: true,
			Interval:  time.Hour,
			Timeout:   5 * time.Minute,
		},
		Recommend: recommend.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks configuration invariants across all sections.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1,65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.RateLimitRequests < 0 {
		return fmt.Errorf("server.rate_limit_requests must not be negative, got %d", c.Server.RateLimitRequests)
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive when rate limiting is enabled")
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	if c.Backend.RetryAttempts < 1 {
		return fmt.Errorf("backend.retry_attempts must be at least 1, got %d", c.Backend.RetryAttempts)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive, got %s", c.Backend.Timeout)
	}
	if c.Refresh.Interval < 0 {
		return fmt.Errorf("refresh.interval must not be negative, got %s", c.Refresh.Interval)
	}
	if c.Refresh.Timeout <= 0 {
		return fmt.Errorf("refresh.timeout must be positive, got %s", c.Refresh.Timeout)
	}
	if err := c.Recommend.Validate(); err != nil {
		return err
	}
	return nil
}
