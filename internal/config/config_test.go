// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Backend.URL = "http://backend:4000"
	return cfg
}

func TestDefaultConfigValidatesWithBackendURL(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsMissingBackendURL(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing backend URL")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"zero server timeout", func(c *Config) { c.Server.Timeout = 0 }},
		{"negative rate limit", func(c *Config) { c.Server.RateLimitRequests = -1 }},
		{"zero retry attempts", func(c *Config) { c.Backend.RetryAttempts = 0 }},
		{"zero backend timeout", func(c *Config) { c.Backend.Timeout = 0 }},
		{"negative refresh interval", func(c *Config) { c.Refresh.Interval = -time.Minute }},
		{"zero refresh timeout", func(c *Config) { c.Refresh.Timeout = 0 }},
		{"bad recommend weights", func(c *Config) { c.Recommend.Fallback.Interest = 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"NEXAFUND_SERVER__PORT", "server.port"},
		{"NEXAFUND_BACKEND__RETRY_ATTEMPTS", "backend.retry_attempts"},
		{"NEXAFUND_LOGGING__LEVEL", "logging.level"},
		{"NEXAFUND_RECOMMEND__FACTORIZATION__SEED", "recommend.factorization.seed"},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.input); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLoadAppliesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("backend:\n  url: http://backend:4000\nserver:\n  port: 9999\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("NEXAFUND_SERVER__PORT", "7070")
	t.Setenv("NEXAFUND_LOGGING__LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Env beats file.
	if cfg.Server.Port != 7070 {
		t.Errorf("expected env port 7070, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Logging.Level)
	}
	if cfg.Backend.URL != "http://backend:4000" {
		t.Errorf("expected file backend URL, got %q", cfg.Backend.URL)
	}
	// Defaults survive for untouched fields.
	if cfg.Refresh.Interval != time.Hour {
		t.Errorf("expected default refresh interval, got %s", cfg.Refresh.Interval)
	}
}

func TestLoadCORSOriginsFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("backend:\n  url: http://backend:4000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("NEXAFUND_SERVER__CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Server.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.CORSOrigins[0] != "https://a.example" || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.Server.CORSOrigins)
	}
}
