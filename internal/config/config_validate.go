// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/rewound/internal/validation"
)

// productionSecretMinLength is the minimum share secret length enforced
// when running with REWOUND_SERVER_ENVIRONMENT=production.
const productionSecretMinLength = 32

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	// Struct tags first: ranges, enums, required fields.
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("invalid configuration: %s", verr.Error())
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateStats(); err != nil {
		return err
	}

	if err := c.validateTautulli(); err != nil {
		return err
	}

	if err := c.validateSync(); err != nil {
		return err
	}

	if err := c.validateShare(); err != nil {
		return err
	}

	if err := c.validateAnonymize(); err != nil {
		return err
	}

	return c.validateNATS()
}

func (c *Config) validateServer() error {
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("REWOUND_SERVER_TIMEOUT must be positive, got: %s", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateStats() error {
	if c.Stats.CacheTTL <= 0 {
		return fmt.Errorf("REWOUND_STATS_CACHE_TTL must be positive, got: %s", c.Stats.CacheTTL)
	}
	if c.Cache.GCInterval < time.Minute {
		return fmt.Errorf("REWOUND_CACHE_GC_INTERVAL must be at least 1m, got: %s", c.Cache.GCInterval)
	}
	return nil
}

// validateTautulli validates Tautulli configuration (only if enabled).
// Tautulli is optional: Rewound can serve an already-synced event log
// with no upstream source configured.
func (c *Config) validateTautulli() error {
	if !c.Tautulli.Enabled {
		return nil
	}

	if c.Tautulli.URL == "" {
		return fmt.Errorf("REWOUND_TAUTULLI_URL is required when REWOUND_TAUTULLI_ENABLED=true")
	}
	if err := validateHTTPURL(c.Tautulli.URL, "REWOUND_TAUTULLI_URL"); err != nil {
		return fmt.Errorf("REWOUND_TAUTULLI_URL is invalid: %w", err)
	}

	if c.Tautulli.APIKey == "" {
		return fmt.Errorf("REWOUND_TAUTULLI_API_KEY is required when REWOUND_TAUTULLI_ENABLED=true")
	}

	if c.Tautulli.Timeout <= 0 {
		return fmt.Errorf("REWOUND_TAUTULLI_TIMEOUT must be positive, got: %s", c.Tautulli.Timeout)
	}
	if c.Tautulli.RatePerSecond <= 0 {
		return fmt.Errorf("REWOUND_TAUTULLI_RATE_PER_SECOND must be positive, got: %f", c.Tautulli.RatePerSecond)
	}
	if c.Tautulli.RateBurst < 1 {
		return fmt.Errorf("REWOUND_TAUTULLI_RATE_BURST must be at least 1, got: %d", c.Tautulli.RateBurst)
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.Interval < time.Minute {
		return fmt.Errorf("REWOUND_SYNC_INTERVAL must be at least 1m, got: %s", c.Sync.Interval)
	}
	if c.Sync.RetryDelay <= 0 {
		return fmt.Errorf("REWOUND_SYNC_RETRY_DELAY must be positive, got: %s", c.Sync.RetryDelay)
	}
	return nil
}

// validateShare checks share token settings. The signing secret is always
// required because share links are a core feature; production additionally
// enforces a minimum secret length.
func (c *Config) validateShare() error {
	if c.Share.Secret == "" {
		return fmt.Errorf("REWOUND_SHARE_SECRET is required (share tokens are signed with it)")
	}
	if c.IsProduction() && len(c.Share.Secret) < productionSecretMinLength {
		return fmt.Errorf("REWOUND_SHARE_SECRET must be at least %d characters in production, got: %d",
			productionSecretMinLength, len(c.Share.Secret))
	}

	if c.Share.DefaultTTL <= 0 {
		return fmt.Errorf("REWOUND_SHARE_DEFAULT_TTL must be positive, got: %s", c.Share.DefaultTTL)
	}
	if c.Share.MaxTTL < c.Share.DefaultTTL {
		return fmt.Errorf("REWOUND_SHARE_MAX_TTL (%s) must not be below REWOUND_SHARE_DEFAULT_TTL (%s)",
			c.Share.MaxTTL, c.Share.DefaultTTL)
	}

	if c.Share.RateLimitReqs < 1 {
		return fmt.Errorf("REWOUND_SHARE_RATE_LIMIT_REQUESTS must be at least 1, got: %d", c.Share.RateLimitReqs)
	}
	if c.Share.RateLimitWindow <= 0 {
		return fmt.Errorf("REWOUND_SHARE_RATE_LIMIT_WINDOW must be positive, got: %s", c.Share.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateAnonymize() error {
	if c.Anonymize.Salt == "" {
		return fmt.Errorf("REWOUND_ANONYMIZE_SALT is required (viewer pseudonyms are derived from it)")
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("REWOUND_NATS_URL is invalid: %w", err)
	}
	if c.NATS.EmbeddedServer && c.NATS.StoreDir == "" {
		return fmt.Errorf("REWOUND_NATS_STORE_DIR is required when the embedded server is enabled")
	}
	return nil
}
