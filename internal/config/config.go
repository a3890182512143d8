// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

// Package config provides configuration loading and validation for BookHub.
//
// Configuration is loaded in three layers, each overriding the previous:
//
//  1. Struct defaults (DefaultConfig)
//  2. YAML file (optional, path from BOOKHUB_CONFIG or ./config.yaml)
//  3. Environment variables (BOOKHUB_ prefix)
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the BookHub server.
type Config struct {
	Server    ServerConfig    `koanf:"server" validate:"required"`
	Store     StoreConfig     `koanf:"store" validate:"required"`
	Security  SecurityConfig  `koanf:"security" validate:"required"`
	Logging   LoggingConfig   `koanf:"logging" validate:"required"`
	Recommend RecommendConfig `koanf:"recommend" validate:"required"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required,min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`
	// MaxUploadBytes caps the size of accepted book files.
	MaxUploadBytes int64 `koanf:"max_upload_bytes" validate:"min=1"`
}

// StoreConfig holds embedded database settings.
type StoreConfig struct {
	// Path is the Badger database directory. Empty selects in-memory mode,
	// which is only useful for tests.
	Path string `koanf:"path"`
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool `koanf:"in_memory"`
	// GCInterval is how often the value log garbage collector runs.
	GCInterval time.Duration `koanf:"gc_interval" validate:"min=1m"`
}

// SecurityConfig holds authentication and hardening settings.
type SecurityConfig struct {
	// JWTSecret signs access tokens. Must be at least 32 bytes in production.
	JWTSecret string `koanf:"jwt_secret" validate:"required,min=32"`
	// TokenLifetime is how long issued access tokens remain valid.
	TokenLifetime time.Duration `koanf:"token_lifetime" validate:"min=1m"`
	// BcryptCost is the password hashing cost factor.
	BcryptCost int `koanf:"bcrypt_cost" validate:"min=4,max=31"`
	// RateLimitRPM is the per-client request budget per minute.
	RateLimitRPM int `koanf:"rate_limit_rpm" validate:"min=1"`
	// LoginRateLimitRPM is the stricter budget for credential endpoints.
	LoginRateLimitRPM int `koanf:"login_rate_limit_rpm" validate:"min=1"`
	// CORSOrigins lists allowed origins. Empty disables CORS headers.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"required,oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"required,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	// WeightMode selects how neighbor rows are weighted when predicting:
	// "distance" weights by cosine distance, "similarity" by 1-distance.
	WeightMode string `koanf:"weight_mode" validate:"required,oneof=distance similarity"`
	// MinInteractions is the number of signals a user needs before
	// personalized ranking is attempted. Below it the user still gets a
	// ranking (cold start is allowed), the value exists for metrics only.
	MinInteractions int `koanf:"min_interactions" validate:"min=0"`
}

// DefaultConfig returns the configuration defaults applied before file and
// environment layers.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  32 << 20,
		},
		Store: StoreConfig{
			Path:       "./data/bookhub",
			InMemory:   false,
			GCInterval: 10 * time.Minute,
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			TokenLifetime:     24 * time.Hour,
			BcryptCost:        12,
			RateLimitRPM:      300,
			LoginRateLimitRPM: 10,
			CORSOrigins:       nil,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			WeightMode:      "distance",
			MinInteractions: 1,
		},
	}
}

// Addr returns the host:port listen address for the HTTP server.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
