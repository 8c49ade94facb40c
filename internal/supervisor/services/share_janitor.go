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

// ExpiredSharePurger matches the purge method of the share service.
//
// Satisfied by *share.Service.
type ExpiredSharePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// ShareJanitorService deletes expired share links on a schedule as a
// supervised service.
//
// Expired shares already fail token verification, so the purge is about
// keeping the shares table from accumulating dead rows, not about access
// control. A daily pass is plenty.
//
// Example usage:
//
//	svc := services.NewShareJanitorService(shareService, 24*time.Hour)
//	tree.AddDataService(svc)
type ShareJanitorService struct {
	purger   ExpiredSharePurger
	interval time.Duration
	name     string
}

// NewShareJanitorService creates a new share janitor service.
//
// Zero or negative intervals fall back to 24 hours.
func NewShareJanitorService(purger ExpiredSharePurger, interval time.Duration) *ShareJanitorService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &ShareJanitorService{
		purger:   purger,
		interval: interval,
		name:     "share-janitor",
	}
}

// Serve implements suture.Service.
//
// Purges expired shares on each tick until the context is canceled.
// Purge failures are logged and retried on the next tick.
func (s *ShareJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			deleted, err := s.purger.PurgeExpired(ctx)
			if err != nil {
				logging.Warn().Err(err).Msg("Share purge failed")
				continue
			}
			if deleted > 0 {
				logging.Info().Int64("deleted", deleted).Msg("Purged expired shares")
			}
		}
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *ShareJanitorService) String() string {
	return s.name
}
