// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/alezhuq/hub-back/internal/validation"
)

const envPrefix = "BOOKHUB_"

// envKeyMap maps environment variable suffixes (after BOOKHUB_) to koanf
// config keys. Only mapped variables are honored; anything else with the
// prefix is ignored rather than guessed at.
var envKeyMap = map[string]string{
	"SERVER_HOST":              "server.host",
	"SERVER_PORT":              "server.port",
	"SERVER_READ_TIMEOUT":      "server.read_timeout",
	"SERVER_WRITE_TIMEOUT":     "server.write_timeout",
	"SERVER_IDLE_TIMEOUT":      "server.idle_timeout",
	"SERVER_SHUTDOWN_TIMEOUT":  "server.shutdown_timeout",
	"SERVER_MAX_UPLOAD_BYTES":  "server.max_upload_bytes",
	"STORE_PATH":               "store.path",
	"STORE_IN_MEMORY":          "store.in_memory",
	"STORE_GC_INTERVAL":        "store.gc_interval",
	"JWT_SECRET":               "security.jwt_secret",
	"TOKEN_LIFETIME":           "security.token_lifetime",
	"BCRYPT_COST":              "security.bcrypt_cost",
	"RATE_LIMIT_RPM":           "security.rate_limit_rpm",
	"LOGIN_RATE_LIMIT_RPM":     "security.login_rate_limit_rpm",
	"CORS_ORIGINS":             "security.cors_origins",
	"LOG_LEVEL":                "logging.level",
	"LOG_FORMAT":               "logging.format",
	"LOG_CALLER":               "logging.caller",
	"RECOMMEND_WEIGHT_MODE":    "recommend.weight_mode",
	"RECOMMEND_MIN_SIGNALS":    "recommend.min_interactions",
}

// sliceKeys lists config keys holding string slices that environment
// variables supply as comma-separated values.
var sliceKeys = []string{
	"security.cors_origins",
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates the result.
//
// The file path is taken from the BOOKHUB_CONFIG environment variable; if
// unset, ./config.yaml is used when present. A missing file is not an error,
// an unreadable or malformed one is.
func Load() (*Config, error) {
	path := os.Getenv(envPrefix + "CONFIG")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return LoadFrom(path)
}

// LoadFrom loads configuration with an explicit file path. An empty path
// skips the file layer.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	processSliceKeys(k)

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envTransform maps a prefixed environment variable name to its koanf key.
// Unmapped variables return empty, which drops them.
func envTransform(s string) string {
	suffix := strings.TrimPrefix(s, envPrefix)
	if key, ok := envKeyMap[suffix]; ok {
		return key
	}
	return ""
}

// processSliceKeys splits comma-separated environment values into string
// slices for the keys that expect them.
func processSliceKeys(k *koanf.Koanf) {
	for _, key := range sliceKeys {
		raw := k.Get(key)
		s, ok := raw.(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		// Ignore the error: the key is known to exist at this point.
		_ = k.Set(key, out)
	}
}

// Validate checks the configuration against its struct tags.
func Validate(cfg *Config) error {
	if err := validation.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
