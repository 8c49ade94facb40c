// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/tomtom215/rewound/internal/logging"
	"github.com/tomtom215/rewound/internal/metrics"
	"github.com/tomtom215/rewound/internal/models"
)

// statsCacheType labels cache metrics emitted by the engine.
const statsCacheType = "stats"

// EventLog supplies year-bounded play history snapshots. Implementations
// must return fully materialized slices, not live cursors, so every
// calculator sees the exact same record set.
type EventLog interface {
	// RecordsForUser returns all records for one account within the filter
	// bounds, ordered by ViewedAt ascending.
	RecordsForUser(ctx context.Context, accountID int, filter YearFilter) ([]models.PlayHistoryRecord, error)

	// RecordsForServer returns all records within the filter bounds across
	// every account, ordered by ViewedAt ascending.
	RecordsForServer(ctx context.Context, filter YearFilter) ([]models.PlayHistoryRecord, error)

	// UserWatchTotals returns per-account aggregate watch time within the
	// filter bounds, one entry per account with at least one play.
	UserWatchTotals(ctx context.Context, filter YearFilter) ([]models.UserWatchTotal, error)
}

// Cache persists serialized stats between computations. A nil Cache on the
// Engine disables caching entirely.
type Cache interface {
	// Get returns the stored payload and whether a live entry exists.
	Get(ctx context.Context, scope models.StatsScope, scopeID int, year int) ([]byte, bool, error)

	// Set stores a payload, replacing any existing entry wholesale.
	Set(ctx context.Context, scope models.StatsScope, scopeID int, year int, payload []byte, ttl time.Duration) error
}

// Anonymizer transforms viewer usernames on server reports for a given
// viewing user. Implementations carry their own configured mode.
type Anonymizer interface {
	Apply(viewers []models.TopViewer, viewingUserID int) []models.TopViewer
}

// Config tunes the engine.
type Config struct {
	// TopN is the depth of the ranked top lists.
	TopN int

	// CacheTTL is the validity window for cached server reports.
	CacheTTL time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TopN:     DefaultTopN,
		CacheTTL: 6 * time.Hour,
	}
}

// Engine orchestrates the calculators into complete annual reports, applying
// caching on the server-wide path.
type Engine struct {
	log        EventLog
	cache      Cache
	anonymizer Anonymizer
	cfg        Config
	now        func() time.Time
}

// NewEngine creates a stats engine. cache and anonymizer may be nil, which
// disables caching and anonymization respectively.
func NewEngine(log EventLog, cache Cache, anonymizer Anonymizer, cfg Config) *Engine {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultConfig().CacheTTL
	}
	return &Engine{
		log:        log,
		cache:      cache,
		anonymizer: anonymizer,
		cfg:        cfg,
		now:        time.Now,
	}
}

// CalculateUserStats computes the annual report for one account. The
// per-user path is uncached: reports are cheap relative to their churn, and
// the percentile rank must reflect the latest server totals.
func (e *Engine) CalculateUserStats(ctx context.Context, accountID int, year int) (*models.UserStats, error) {
	start := time.Now()
	stats, err := e.computeUserStats(ctx, accountID, year)
	metrics.RecordStatsCompute(string(models.ScopeUser), year, time.Since(start), err)
	return stats, err
}

func (e *Engine) computeUserStats(ctx context.Context, accountID int, year int) (*models.UserStats, error) {
	yf, err := NewYearFilter(year)
	if err != nil {
		return nil, err
	}

	records, err := e.log.RecordsForUser(ctx, accountID, yf)
	if err != nil {
		return nil, fmt.Errorf("failed to query records for account %d: %w", accountID, err)
	}
	totals, err := e.log.UserWatchTotals(ctx, yf)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch totals: %w", err)
	}

	var (
		watchTime WatchTime
		topMovies []models.RankedItem
		topShows  []models.RankedItem
		topGenres []models.RankedItem
		byMonth   models.MonthlyDistribution
		byHour    models.HourlyDistribution
		binge     *models.BingeSession
		first     *models.WatchEvent
		last      *models.WatchEvent
	)

	runCalculators(
		func() { watchTime = CalculateWatchTime(records) },
		func() { topMovies = RankByMediaKey(records, models.MediaTypeMovie, e.cfg.TopN) },
		func() { topShows = RankByMediaKey(records, models.MediaTypeEpisode, e.cfg.TopN) },
		func() { topGenres = RankGenres(records, e.cfg.TopN) },
		func() { byMonth = CalculateMonthlyDistribution(records) },
		func() { byHour = CalculateHourlyDistribution(records) },
		func() { binge = FindLongestBinge(records) },
		func() { first = FindFirstWatch(records) },
		func() { last = FindLastWatch(records) },
	)

	return &models.UserStats{
		UserID:                accountID,
		Year:                  year,
		TotalWatchTimeMinutes: watchTime.TotalMinutes,
		TotalPlays:            watchTime.TotalPlays,
		TopMovies:             topMovies,
		TopShows:              topShows,
		TopGenres:             topGenres,
		WatchTimeByMonth:      byMonth,
		WatchTimeByHour:       byHour,
		PercentileRank:        CalculatePercentileRank(sumSeconds(records), watchTotalSeconds(totals)),
		LongestBinge:          binge,
		FirstWatch:            first,
		LastWatch:             last,
		GeneratedAt:           e.now().UTC(),
	}, nil
}

// CalculateServerStats computes the annual report across all accounts,
// consulting the cache first. Cache failures on either side degrade to a
// forced miss; the request itself never fails on cache trouble. Concurrent
// misses for the same year may each compute; the duplicate work is accepted
// over the complexity of a single-flight guard.
func (e *Engine) CalculateServerStats(ctx context.Context, year int) (*models.ServerStats, error) {
	yf, err := NewYearFilter(year)
	if err != nil {
		return nil, err
	}

	if cached, ok := e.cachedServerStats(ctx, year); ok {
		return cached, nil
	}

	start := time.Now()
	stats, err := e.computeServerStats(ctx, yf)
	metrics.RecordStatsCompute(string(models.ScopeServer), year, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	e.storeServerStats(ctx, year, stats)
	return stats, nil
}

// GetServerStatsWithAnonymization returns the server report with viewer
// usernames transformed for the viewing user. The transform runs after the
// cache layer, so cached payloads always hold real names.
func (e *Engine) GetServerStatsWithAnonymization(ctx context.Context, year int, viewingUserID int) (*models.ServerStats, error) {
	stats, err := e.CalculateServerStats(ctx, year)
	if err != nil {
		return nil, err
	}
	if e.anonymizer == nil {
		return stats, nil
	}

	out := *stats
	out.TopViewers = e.anonymizer.Apply(stats.TopViewers, viewingUserID)
	return &out, nil
}

func (e *Engine) computeServerStats(ctx context.Context, yf YearFilter) (*models.ServerStats, error) {
	records, err := e.log.RecordsForServer(ctx, yf)
	if err != nil {
		return nil, fmt.Errorf("failed to query server records: %w", err)
	}
	totals, err := e.log.UserWatchTotals(ctx, yf)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch totals: %w", err)
	}

	var (
		watchTime  WatchTime
		topMovies  []models.RankedItem
		topShows   []models.RankedItem
		topGenres  []models.RankedItem
		topViewers []models.TopViewer
		byMonth    models.MonthlyDistribution
		byHour     models.HourlyDistribution
		binge      *models.BingeSession
		first      *models.WatchEvent
		last       *models.WatchEvent
	)

	runCalculators(
		func() { watchTime = CalculateWatchTime(records) },
		func() { topMovies = RankByMediaKey(records, models.MediaTypeMovie, e.cfg.TopN) },
		func() { topShows = RankByMediaKey(records, models.MediaTypeEpisode, e.cfg.TopN) },
		func() { topGenres = RankGenres(records, e.cfg.TopN) },
		func() { topViewers = RankViewers(totals, e.cfg.TopN) },
		func() { byMonth = CalculateMonthlyDistribution(records) },
		func() { byHour = CalculateHourlyDistribution(records) },
		func() { binge = FindLongestBingeAcrossUsers(records) },
		func() { first = FindFirstWatch(records) },
		func() { last = FindLastWatch(records) },
	)

	return &models.ServerStats{
		Year:                  yf.Year,
		TotalUsers:            len(totals),
		TotalWatchTimeMinutes: watchTime.TotalMinutes,
		TotalPlays:            watchTime.TotalPlays,
		TopMovies:             topMovies,
		TopShows:              topShows,
		TopGenres:             topGenres,
		TopViewers:            topViewers,
		WatchTimeByMonth:      byMonth,
		WatchTimeByHour:       byHour,
		LongestBinge:          binge,
		FirstWatch:            first,
		LastWatch:             last,
		GeneratedAt:           e.now().UTC(),
	}, nil
}

// cachedServerStats consults the cache for a live server report. Any cache
// failure, including a corrupt payload, degrades to a miss.
func (e *Engine) cachedServerStats(ctx context.Context, year int) (*models.ServerStats, bool) {
	if e.cache == nil {
		return nil, false
	}

	payload, ok, err := e.cache.Get(ctx, models.ScopeServer, 0, year)
	if err != nil {
		logging.Warn().Err(err).Int("year", year).Msg("stats cache get failed, recomputing")
		metrics.CacheErrors.WithLabelValues(statsCacheType, "get").Inc()
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var stats models.ServerStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		logging.Warn().Err(err).Int("year", year).Msg("stats cache payload corrupt, recomputing")
		metrics.CacheErrors.WithLabelValues(statsCacheType, "get").Inc()
		return nil, false
	}
	return &stats, true
}

// storeServerStats writes a computed report back to the cache. Failures are
// logged and counted but never surface to the caller.
func (e *Engine) storeServerStats(ctx context.Context, year int, stats *models.ServerStats) {
	if e.cache == nil {
		return
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		logging.Warn().Err(err).Int("year", year).Msg("failed to marshal server stats for cache")
		return
	}
	if err := e.cache.Set(ctx, models.ScopeServer, 0, year, payload, e.cfg.CacheTTL); err != nil {
		logging.Warn().Err(err).Int("year", year).Msg("stats cache set failed")
		metrics.CacheErrors.WithLabelValues(statsCacheType, "set").Inc()
	}
}

// runCalculators fans the calculator funcs out over goroutines and waits for
// all of them. Each func writes only its own captured variable, so no
// synchronization beyond the WaitGroup is needed.
func runCalculators(calcs ...func()) {
	var wg sync.WaitGroup
	for _, calc := range calcs {
		wg.Add(1)
		go func(fn func()) {
			defer wg.Done()
			fn()
		}(calc)
	}
	wg.Wait()
}

// watchTotalSeconds extracts the per-account totals used as percentile input.
func watchTotalSeconds(totals []models.UserWatchTotal) []int64 {
	out := make([]int64, len(totals))
	for i, t := range totals {
		out[i] = t.TotalSeconds
	}
	return out
}
