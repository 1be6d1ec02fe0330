// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config maps the process environment onto a typed [Config].

Parsing is delegated to 'caarlos0/env'. Required variables fail fast at
startup; everything else carries a default suitable for local development.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Librio API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL       string        `env:"REDIS_URL,required"`
	RedisPoolSize  int           `env:"REDIS_POOL_SIZE"  envDefault:"10"`
	RedisNamespace string        `env:"REDIS_NAMESPACE"  envDefault:"librio"`
	ViewerCacheTTL time.Duration `env:"VIEWER_CACHE_TTL" envDefault:"5m"`

	// Token signing
	JWTPrivKeyPath  string        `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath   string        `env:"JWT_PUBLIC_KEY_PATH,required"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL"  envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`

	// Object Storage (MinIO / S3-compatible) for book covers
	S3Endpoint  string `env:"S3_ENDPOINT"   envDefault:"localhost:9000"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET"     envDefault:"librio-covers"`
	S3UseSSL    bool   `env:"S3_USE_SSL"    envDefault:"false"`

	// Cross-Origin Resource Sharing, comma-separated origin suffixes
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the trimmed, non-empty entries of EXTRA_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// StorageEnabled reports whether object storage credentials are configured.
func (c *Config) StorageEnabled() bool {
	return c.S3AccessKey != "" && c.S3SecretKey != ""
}
