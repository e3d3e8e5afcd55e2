// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

// Package config provides layered configuration for Vitrine using Koanf v2.
//
// Configuration is loaded from three layers (highest priority wins):
//  1. Environment variables (LASTFM_API_KEY, WEBHOOK_SECRET, ...)
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Built-in defaults
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Vitrine server.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Lastfm   LastfmConfig   `koanf:"lastfm"`
	Webhook  WebhookConfig  `koanf:"webhook"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig holds DuckDB connection settings.
type DatabaseConfig struct {
	// Path is the database file path. ":memory:" opens an in-memory
	// database (used by tests).
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// SecurityConfig holds access-control settings shared by both ingestion paths.
//
// AllowedIPs gates browser-originated writes (cooking entries). An EMPTY
// allowlist permits every caller - a deliberate default-open policy for
// local use. Load() logs a warning when this default is active.
type SecurityConfig struct {
	AllowedIPs        []string      `koanf:"allowed_ips"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// WebhookConfig holds the shared-secret settings for the movie-log webhook.
// SecretHeader names the request header carrying the secret, so the header
// itself is part of the configuration surface rather than a fixed constant.
type WebhookConfig struct {
	Secret       string `koanf:"secret"`
	SecretHeader string `koanf:"secret_header"`
}

// LastfmConfig holds settings for the Last.fm chart client.
type LastfmConfig struct {
	URL            string        `koanf:"url"`
	User           string        `koanf:"user"`
	APIKey         string        `koanf:"api_key"`
	Timeout        time.Duration `koanf:"timeout"`
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
	// RequestsPerSecond bounds the outbound call rate. Last.fm's terms ask
	// clients to stay under 5 req/s averaged over 5 minutes.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:      "/data/vitrine.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        3870,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			AllowedIPs:        []string{},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{},
		},
		Webhook: WebhookConfig{
			Secret:       "",
			SecretHeader: "x-vitrine-webhook-token",
		},
		Lastfm: LastfmConfig{
			URL:               "https://ws.audioscrobbler.com/2.0/",
			User:              "",
			APIKey:            "",
			Timeout:           10 * time.Second,
			MaxRetries:        3,
			RetryBaseDelay:    time.Second,
			RequestsPerSecond: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for values that cannot work at runtime.
// Defaults that are merely risky (empty allowlist, missing webhook secret)
// are logged by Load rather than rejected here, since both are legitimate
// for local development.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.Webhook.SecretHeader == "" {
		return fmt.Errorf("webhook secret header must not be empty")
	}
	if c.Lastfm.URL == "" {
		return fmt.Errorf("lastfm url must not be empty")
	}
	if c.Lastfm.MaxRetries < 0 {
		return fmt.Errorf("lastfm max_retries must not be negative")
	}
	if c.Lastfm.RequestsPerSecond <= 0 {
		return fmt.Errorf("lastfm requests_per_second must be positive")
	}
	return nil
}
