// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/rewound/internal/config"
	"github.com/tomtom215/rewound/internal/logging"
	"github.com/tomtom215/rewound/internal/metrics"
	"github.com/tomtom215/rewound/internal/models"
)

// Store is the slice of the database the sync service writes to.
type Store interface {
	InsertPlayHistoryBatch(ctx context.Context, recs []models.PlayHistoryRecord) (inserted, duplicates int, err error)
	LatestViewedAt(ctx context.Context) (int64, error)
}

// HistorySource is the slice of the Tautulli API the service reads from.
// Implemented by BreakerClient in production and by fakes in tests.
type HistorySource interface {
	Ping(ctx context.Context) error
	GetHistoryPage(ctx context.Context, since time.Time, start, length int) (*HistoryPage, error)
}

// Status is a point-in-time snapshot of sync state for the status
// endpoint.
type Status struct {
	Enabled        bool       `json:"enabled"`
	Running        bool       `json:"running"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	LastAdded      int        `json:"last_added"`
	LastDuplicates int        `json:"last_duplicates"`
	LastError      string     `json:"last_error,omitempty"`
}

// Service periodically pulls new play history from Tautulli into the
// event log. Each pass reads the newest stored viewed_at as its watermark
// and fetches everything after it; the unique index on the log makes
// replayed pages idempotent, so the date-granular watermark can safely
// overlap the previous run.
//
// Service implements suture.Service via Serve.
type Service struct {
	client HistorySource
	store  Store
	cfg    *config.SyncConfig

	mu             sync.RWMutex
	running        bool
	lastSyncAt     time.Time
	lastAdded      int
	lastDuplicates int
	lastErr        error
	onCompleted    func(added int, duration time.Duration)

	syncMu sync.Mutex // serializes sync runs
}

// NewService creates a sync service.
func NewService(client HistorySource, store Store, cfg *config.SyncConfig) *Service {
	return &Service{
		client: client,
		store:  store,
		cfg:    cfg,
	}
}

// SetOnSyncCompleted registers a callback invoked after each successful
// sync pass with the number of records added and the pass duration.
func (s *Service) SetOnSyncCompleted(fn func(added int, duration time.Duration)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCompleted = fn
}

// String names the service in supervisor logs.
func (s *Service) String() string {
	return "ingest-sync"
}

// Serve runs the periodic sync loop until the context is canceled.
func (s *Service) Serve(ctx context.Context) error {
	if s.cfg.OnStartup {
		if err := s.TriggerSync(ctx); err != nil {
			logging.Warn().Err(err).Msg("Startup sync failed")
		}
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.TriggerSync(ctx); err != nil {
				logging.Error().Err(err).Msg("Sync failed")
			}
		}
	}
}

// TriggerSync runs one sync pass. Concurrent triggers serialize rather
// than overlap.
func (s *Service) TriggerSync(ctx context.Context) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	return s.syncOnce(ctx)
}

// Status returns the current sync state snapshot.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Enabled:        true,
		Running:        s.running,
		LastAdded:      s.lastAdded,
		LastDuplicates: s.lastDuplicates,
	}
	if !s.lastSyncAt.IsZero() {
		at := s.lastSyncAt
		st.LastSyncAt = &at
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

func (s *Service) syncOnce(ctx context.Context) error {
	start := time.Now()
	s.setRunning(true)
	defer s.setRunning(false)

	watermark, err := s.store.LatestViewedAt(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load sync watermark: %w", err)
		s.recordResult(start, 0, 0, err)
		metrics.RecordSyncOperation(time.Since(start), 0, err)
		return err
	}

	var since time.Time
	if watermark > 0 {
		since = time.Unix(watermark, 0).UTC()
	}

	paginator, err := NewPaginator(s.fetchPage(since), s.cfg.PageSize)
	if err != nil {
		err = fmt.Errorf("invalid sync page size: %w", err)
		s.recordResult(start, 0, 0, err)
		metrics.RecordSyncOperation(time.Since(start), 0, err)
		return err
	}

	var added, duplicates, skipped int
	err = paginator.Each(ctx, func(page Page) error {
		if page.Start == 0 && page.TotalSize > 0 {
			logging.Debug().
				Int("total", page.TotalSize).
				Int("pages", CalculateExpectedPages(page.TotalSize, s.cfg.PageSize)).
				Msg("History backlog sized")
		}

		recs, pageSkipped := mapHistoryPage(page.Items)
		skipped += pageSkipped

		inserted, dup, insErr := s.store.InsertPlayHistoryBatch(ctx, recs)
		if insErr != nil {
			return fmt.Errorf("failed to store history batch: %w", insErr)
		}
		added += inserted
		duplicates += dup

		logging.Debug().
			Int("inserted", inserted).
			Int("duplicates", dup).
			Int("offset", page.Start).
			Msg("Processed history page")
		return nil
	})

	duration := time.Since(start)
	s.recordResult(start, added, duplicates, err)
	metrics.RecordSyncOperation(duration, added, err)
	if err != nil {
		return err
	}

	logging.Info().
		Int("added", added).
		Int("duplicates", duplicates).
		Int("skipped", skipped).
		Dur("duration", duration).
		Msg("Sync completed")

	s.mu.RLock()
	callback := s.onCompleted
	s.mu.RUnlock()
	if callback != nil {
		callback(added, duration)
	}
	return nil
}

// fetchPage adapts the history source to the paginator, retrying each
// page fetch with exponential backoff.
func (s *Service) fetchPage(since time.Time) FetchFunc {
	return func(ctx context.Context, start, pageSize int) (Page, error) {
		var page *HistoryPage
		err := s.retryWithBackoff(ctx, func() error {
			var fetchErr error
			page, fetchErr = s.client.GetHistoryPage(ctx, since, start, pageSize)
			return fetchErr
		})
		if err != nil {
			return Page{}, err
		}
		return Page{
			Items:     page.Data,
			TotalSize: page.RecordsFiltered,
			Start:     start,
		}, nil
	}
}

// retryWithBackoff retries fn with doubling delays, bailing out early on
// context cancellation.
func (s *Service) retryWithBackoff(ctx context.Context, fn func() error) error {
	attempts := s.cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	delay := s.cfg.RetryDelay

	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			return nil
		}

		if attempt < attempts-1 {
			logging.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Int("max_attempts", attempts).
				Dur("delay", delay).
				Msg("Retry attempt")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("max retry attempts reached: %w", err)
}

// mapHistoryPage converts wire records to play events, counting rows
// that cannot be mapped.
func mapHistoryPage(items []HistoryRecord) ([]models.PlayHistoryRecord, int) {
	recs := make([]models.PlayHistoryRecord, 0, len(items))
	skipped := 0
	for i := range items {
		rec, err := items[i].toPlayHistory()
		if err != nil {
			skipped++
			continue
		}
		recs = append(recs, rec)
	}
	return recs, skipped
}

func (s *Service) setRunning(running bool) {
	s.mu.Lock()
	s.running = running
	s.mu.Unlock()
}

func (s *Service) recordResult(at time.Time, added, duplicates int, err error) {
	s.mu.Lock()
	s.lastSyncAt = at
	s.lastAdded = added
	s.lastDuplicates = duplicates
	s.lastErr = err
	s.mu.Unlock()
}
