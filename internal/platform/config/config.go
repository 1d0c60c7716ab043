// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Authenticator) via constructors.
  - No signing keys: token keys are derived per member, so none is configured here.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the rankboard API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis). Login throttling is disabled when empty.
	RedisURL string `env:"REDIS_URL"`

	// Token lifetimes. ACCESS_TOKEN_TTL=0 issues access tokens without expiry.
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"720h"`
	TokenLeeway    time.Duration `env:"TOKEN_LEEWAY"     envDefault:"30s"`

	// Password hashing
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	// Failed password login throttling
	LoginFailureLimit int           `env:"LOGIN_FAILURE_LIMIT" envDefault:"7"`
	LoginLockout      time.Duration `env:"LOGIN_LOCKOUT"       envDefault:"15m"`

	// CookieSecure marks the access token cookie as HTTPS-only.
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"true"`

	// Cross-Origin Resource Sharing: origins ending with this suffix are allowed in production.
	CORSOriginSuffix string `env:"CORS_ORIGIN_SUFFIX"`

	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects values that parse but cannot work.
func (c *Config) validate() error {
	if c.AccessTokenTTL < 0 {
		return fmt.Errorf("config: ACCESS_TOKEN_TTL must not be negative, got %s", c.AccessTokenTTL)
	}
	if c.TokenLeeway < 0 {
		return fmt.Errorf("config: TOKEN_LEEWAY must not be negative, got %s", c.TokenLeeway)
	}
	if c.LoginFailureLimit < 1 {
		return fmt.Errorf("config: LOGIN_FAILURE_LIMIT must be at least 1, got %d", c.LoginFailureLimit)
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ThrottleEnabled reports whether a Redis URL is configured for login throttling.
func (c *Config) ThrottleEnabled() bool {
	return c.RedisURL != ""
}
