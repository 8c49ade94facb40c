// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/tomtom215/rewound/internal/logging"
	"github.com/tomtom215/rewound/internal/metrics"
	"github.com/tomtom215/rewound/internal/models"
)

// statsKeyPrefix namespaces report entries inside the shared BadgerDB.
const statsKeyPrefix = "stats:"

// statsCacheType labels Prometheus cache metrics.
const statsCacheType = "stats"

// cacheEntry is the stored envelope. Validity is judged against ComputedAt
// and TTLSeconds at read time; the Badger entry TTL below is only storage
// hygiene and carries a grace margin so lazy expiry always decides first.
type cacheEntry struct {
	Scope      models.StatsScope `json:"scope"`
	ScopeID    int               `json:"scope_id"`
	Year       int               `json:"year"`
	ComputedAt int64             `json:"computed_at"` // unix seconds
	TTLSeconds int64             `json:"ttl_seconds"`
	Payload    json.RawMessage   `json:"payload"`
}

// StatsCacheStats is a point-in-time counter snapshot.
type StatsCacheStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// StatsCache persists serialized annual reports in BadgerDB so computed
// stats survive restarts. Entries expire lazily: a read past the TTL is a
// miss, and the caller recomputes and overwrites.
type StatsCache struct {
	db  *badger.DB
	now func() time.Time

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// Open creates (or reopens) a stats cache at the given filesystem path.
func Open(path string) (*StatsCache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open stats cache at %s: %w", path, err)
	}

	logging.Info().Str("path", path).Msg("stats cache opened")
	return NewStatsCache(db), nil
}

// NewStatsCache wraps an already-open BadgerDB. The caller keeps ownership
// of the DB unless Close is used.
func NewStatsCache(db *badger.DB) *StatsCache {
	return &StatsCache{
		db:  db,
		now: time.Now,
	}
}

// statsKey builds the storage key for one (scope, scopeID, year) triple.
func statsKey(scope models.StatsScope, scopeID, year int) []byte {
	return []byte(fmt.Sprintf("%s%s:%d:%d", statsKeyPrefix, scope, scopeID, year))
}

// Get returns the stored payload for the triple, reporting a miss for
// absent or expired entries. Expired entries count as evictions.
func (c *StatsCache) Get(_ context.Context, scope models.StatsScope, scopeID, year int) ([]byte, bool, error) {
	var entry cacheEntry

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(statsKey(scope, scopeID, year))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		c.misses.Add(1)
		metrics.CacheMisses.WithLabelValues(statsCacheType).Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read stats cache entry: %w", err)
	}

	age := c.now().Unix() - entry.ComputedAt
	if age >= entry.TTLSeconds {
		c.evictions.Add(1)
		c.misses.Add(1)
		metrics.CacheEvictions.WithLabelValues(statsCacheType).Inc()
		metrics.CacheMisses.WithLabelValues(statsCacheType).Inc()
		return nil, false, nil
	}

	c.hits.Add(1)
	metrics.CacheHits.WithLabelValues(statsCacheType).Inc()
	return entry.Payload, true, nil
}

// Set stores a payload, replacing any existing entry wholesale.
func (c *StatsCache) Set(_ context.Context, scope models.StatsScope, scopeID, year int, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("invalid cache ttl %v", ttl)
	}

	entry := cacheEntry{
		Scope:      scope,
		ScopeID:    scopeID,
		Year:       year,
		ComputedAt: c.now().Unix(),
		TTLSeconds: int64(ttl / time.Second),
		Payload:    payload,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal stats cache entry: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		// Badger-side TTL gets one extra window as grace so lazy expiry
		// is always the first to fire.
		e := badger.NewEntry(statsKey(scope, scopeID, year), data).WithTTL(2 * ttl)
		return txn.SetEntry(e)
	})
}

// Invalidate removes one entry. Removing an absent entry is not an error.
func (c *StatsCache) Invalidate(_ context.Context, scope models.StatsScope, scopeID, year int) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(statsKey(scope, scopeID, year))
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate stats cache entry: %w", err)
	}

	metrics.CacheEvictions.WithLabelValues(statsCacheType).Inc()
	return nil
}

// InvalidateAll drops every stats entry. Used on sync completion: new
// history can change any report, so the whole namespace recomputes lazily.
func (c *StatsCache) InvalidateAll(_ context.Context) error {
	if err := c.db.DropPrefix([]byte(statsKeyPrefix)); err != nil {
		return fmt.Errorf("failed to drop stats cache entries: %w", err)
	}

	logging.Debug().Msg("stats cache invalidated")
	return nil
}

// RunGC runs BadgerDB value-log garbage collection until no more space
// can be reclaimed. Called periodically by the cache janitor; expired and
// overwritten report payloads are reclaimed here.
func (c *StatsCache) RunGC() error {
	for {
		err := c.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("stats cache gc: %w", err)
		}
	}
}

// Stats returns the counter snapshot since process start.
func (c *StatsCache) Stats() StatsCacheStats {
	return StatsCacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// Close closes the underlying BadgerDB.
func (c *StatsCache) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close stats cache: %w", err)
	}
	return nil
}
