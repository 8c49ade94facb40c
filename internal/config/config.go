// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package config

import (
	"time"
)

// Config is the root configuration for Rewound, assembled from defaults,
// an optional YAML file, and REWOUND_* environment variables.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Stats     StatsConfig     `koanf:"stats"`
	Tautulli  TautulliConfig  `koanf:"tautulli"`
	Sync      SyncConfig      `koanf:"sync"`
	Share     ShareConfig     `koanf:"share"`
	Anonymize AnonymizeConfig `koanf:"anonymize"`
	NATS      NATSConfig      `koanf:"nats"` // Optional: external event bus (build tag nats)
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host" validate:"required"`
	Port              int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout           time.Duration `koanf:"timeout"`     // Read/write timeout for the HTTP server
	Environment       string        `koanf:"environment" validate:"oneof=development production"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"` // Per-IP API requests per window, 0 disables
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// DatabaseConfig holds DuckDB event log settings.
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"` // DuckDB file path
	MaxMemory string `koanf:"max_memory"`               // DuckDB memory limit (e.g. "2GB")
	Threads   int    `koanf:"threads" validate:"gte=0"` // 0 = runtime.NumCPU()
}

// CacheConfig holds Badger stats cache settings.
type CacheConfig struct {
	Path       string        `koanf:"path" validate:"required"` // Badger directory
	GCInterval time.Duration `koanf:"gc_interval"`              // Value-log GC cadence
}

// StatsConfig holds report computation settings.
type StatsConfig struct {
	TopN     int           `koanf:"top_n" validate:"gte=1,lte=100"` // Leaderboard length
	CacheTTL time.Duration `koanf:"cache_ttl"`                      // Server report cache validity
}

// TautulliConfig holds the upstream play-history source settings.
// Tautulli is optional: with it disabled Rewound serves whatever the
// event log already contains.
type TautulliConfig struct {
	Enabled       bool          `koanf:"enabled"`
	URL           string        `koanf:"url"`
	APIKey        string        `koanf:"api_key"`
	Timeout       time.Duration `koanf:"timeout"`         // Per-request HTTP timeout
	RatePerSecond float64       `koanf:"rate_per_second"` // Outbound request rate
	RateBurst     int           `koanf:"rate_burst"`
}

// SyncConfig holds incremental history sync settings.
type SyncConfig struct {
	Interval      time.Duration `koanf:"interval"`
	PageSize      int           `koanf:"page_size" validate:"gte=1,lte=1000"`
	OnStartup     bool          `koanf:"on_startup"` // Run one sync pass immediately on boot
	RetryAttempts int           `koanf:"retry_attempts" validate:"gte=0,lte=10"`
	RetryDelay    time.Duration `koanf:"retry_delay"`
}

// ShareConfig holds share link settings.
type ShareConfig struct {
	Secret          string        `koanf:"secret"`      // HS256 signing secret for share tokens
	DefaultTTL      time.Duration `koanf:"default_ttl"` // Share lifetime when the request omits one
	MaxTTL          time.Duration `koanf:"max_ttl"`
	RateLimitReqs   int           `koanf:"rate_limit_requests"` // Token lookups per window per IP
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// AnonymizeConfig holds viewer pseudonym settings.
type AnonymizeConfig struct {
	DefaultMode string `koanf:"default_mode" validate:"anonymize_mode"` // none, others, full
	Salt        string `koanf:"salt"`                                   // Server-specific pseudonym salt
}

// NATSConfig holds the optional external event bus settings. Only honored
// by builds with the nats tag; the default build uses the in-process bus.
type NATSConfig struct {
	Enabled        bool   `koanf:"enabled"`
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	Host           string `koanf:"host"` // Embedded server listen address
	Port           int    `koanf:"port"`
	StoreDir       string `koanf:"store_dir"` // JetStream storage directory
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs with production checks on.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
