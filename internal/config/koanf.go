// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/rewound/config.yaml",
	"/etc/rewound/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "REWOUND_CONFIG_PATH"

// envPrefix restricts which environment variables the env layer reads.
const envPrefix = "REWOUND_"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8484,
			Timeout:           30 * time.Second,
			Environment:       "development", // Set REWOUND_SERVER_ENVIRONMENT=production for production checks
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Database: DatabaseConfig{
			Path:      "/data/rewound.duckdb",
			MaxMemory: "2GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Cache: CacheConfig{
			Path:       "/data/cache",
			GCInterval: time.Hour,
		},
		Stats: StatsConfig{
			TopN:     10,
			CacheTTL: 6 * time.Hour,
		},
		Tautulli: TautulliConfig{
			Enabled:       false, // Serve existing history only until a source is configured
			URL:           "",
			APIKey:        "",
			Timeout:       30 * time.Second,
			RatePerSecond: 5,
			RateBurst:     10,
		},
		Sync: SyncConfig{
			Interval:      time.Hour,
			PageSize:      100,
			OnStartup:     true,
			RetryAttempts: 5,
			RetryDelay:    2 * time.Second,
		},
		Share: ShareConfig{
			Secret:          "",
			DefaultTTL:      30 * 24 * time.Hour,
			MaxTTL:          365 * 24 * time.Hour,
			RateLimitReqs:   30,
			RateLimitWindow: time.Minute,
		},
		Anonymize: AnonymizeConfig{
			DefaultMode: "others",
			Salt:        "",
		},
		NATS: NATSConfig{
			Enabled:        false,
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: true,
			Host:           "127.0.0.1",
			Port:           4222,
			StoreDir:       "/data/nats",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if one is found)
//  3. Environment Variables: REWOUND_* overrides
//
// Precedence is ENV > File > Defaults. The result is validated before
// being returned.
func Load() (*Config, error) {
	return loadFrom(findConfigFile())
}

// LoadFile loads configuration like Load but from an explicit config file
// path, as given by the -config flag. The file must exist.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return loadFrom(path)
}

func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// REWOUND_TAUTULLI_URL -> tautulli.url, REWOUND_LOG_LEVEL -> logging.level
	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms REWOUND_* environment variable names to koanf
// config paths. Only explicitly mapped variables are honored; everything
// else is skipped so unrelated environment variables cannot pollute the
// configuration.
//
// Examples:
//   - REWOUND_TAUTULLI_URL -> tautulli.url
//   - REWOUND_STATS_CACHE_TTL -> stats.cache_ttl
//   - REWOUND_LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	envMappings := map[string]string{
		// Server mappings
		"server_host":                "server.host",
		"server_port":                "server.port",
		"server_timeout":             "server.timeout",
		"server_environment":         "server.environment",
		"server_cors_origins":        "server.cors_origins",
		"server_rate_limit_requests": "server.rate_limit_requests",
		"server_rate_limit_window":   "server.rate_limit_window",

		// Database mappings
		"database_path":       "database.path",
		"database_max_memory": "database.max_memory",
		"database_threads":    "database.threads",

		// Cache mappings
		"cache_path":        "cache.path",
		"cache_gc_interval": "cache.gc_interval",

		// Stats mappings
		"stats_top_n":     "stats.top_n",
		"stats_cache_ttl": "stats.cache_ttl",

		// Tautulli mappings
		"tautulli_enabled":         "tautulli.enabled",
		"tautulli_url":             "tautulli.url",
		"tautulli_api_key":         "tautulli.api_key",
		"tautulli_timeout":         "tautulli.timeout",
		"tautulli_rate_per_second": "tautulli.rate_per_second",
		"tautulli_rate_burst":      "tautulli.rate_burst",

		// Sync mappings
		"sync_interval":       "sync.interval",
		"sync_page_size":      "sync.page_size",
		"sync_on_startup":     "sync.on_startup",
		"sync_retry_attempts": "sync.retry_attempts",
		"sync_retry_delay":    "sync.retry_delay",

		// Share mappings
		"share_secret":              "share.secret",
		"share_default_ttl":         "share.default_ttl",
		"share_max_ttl":             "share.max_ttl",
		"share_rate_limit_requests": "share.rate_limit_requests",
		"share_rate_limit_window":   "share.rate_limit_window",

		// Anonymize mappings
		"anonymize_default_mode": "anonymize.default_mode",
		"anonymize_salt":         "anonymize.salt",

		// NATS mappings
		"nats_enabled":   "nats.enabled",
		"nats_url":       "nats.url",
		"nats_embedded":  "nats.embedded_server",
		"nats_store_dir": "nats.store_dir",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped
	return ""
}
