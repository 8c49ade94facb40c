// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package services

import (
	"context"
	"time"

	"github.com/tomtom215/rewound/internal/logging"
)

// GarbageCollector matches the value-log GC method of the stats cache.
//
// This interface lets the janitor work with the cache without importing
// the cache package. Satisfied by *cache.StatsCache.
type GarbageCollector interface {
	RunGC() error
}

// CacheJanitorService runs periodic BadgerDB value-log garbage collection
// for the stats cache as a supervised service.
//
// Badger never reclaims value-log space on its own; without a GC loop the
// cache directory grows unbounded as cached reports expire and get
// rewritten. The janitor ticks at the configured interval and reclaims
// whatever space it can on each pass.
//
// Example usage:
//
//	svc := services.NewCacheJanitorService(statsCache, cfg.Cache.GCInterval)
//	tree.AddDataService(svc)
type CacheJanitorService struct {
	gc       GarbageCollector
	interval time.Duration
	name     string
}

// NewCacheJanitorService creates a new cache janitor service.
//
// Zero or negative intervals fall back to one hour, matching the
// config default.
func NewCacheJanitorService(gc GarbageCollector, interval time.Duration) *CacheJanitorService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CacheJanitorService{
		gc:       gc,
		interval: interval,
		name:     "cache-janitor",
	}
}

// Serve implements suture.Service.
//
// Runs GC on each tick until the context is canceled. A failed GC pass
// is logged and retried on the next tick rather than returned; returning
// would make the supervisor restart the janitor, which cannot help when
// Badger has nothing to rewrite.
func (c *CacheJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.gc.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("Cache GC failed")
			}
		}
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (c *CacheJanitorService) String() string {
	return c.name
}
