// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

// Package metrics provides Prometheus instrumentation for Rewound:
// stats-engine compute latency, cache efficiency, ingest sync operations,
// database queries, share-link activity, and API throughput.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Stats Engine Metrics
	StatsComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stats_compute_duration_seconds",
			Help:    "Duration of annual stats computations in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"scope"}, // "user", "server"
	)

	StatsComputeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_compute_errors_total",
			Help: "Total number of failed stats computations",
		},
		[]string{"scope", "error_type"}, // error_type: "invalid_year", "event_log", "other"
	)

	StatsReportsComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_reports_computed_total",
			Help: "Total number of annual reports computed",
		},
		[]string{"scope", "year"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "stats"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry or bust)",
		},
		[]string{"cache_type"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_errors_total",
			Help: "Total number of cache storage errors (degraded to misses)",
		},
		[]string{"cache_type", "operation"}, // operation: "get", "set", "invalidate"
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Sync Operation Metrics
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Duration of history sync operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	SyncRecordsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_records_processed_total",
			Help: "Total number of play-history records processed during sync",
		},
	)

	SyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_errors_total",
			Help: "Total number of sync errors",
		},
		[]string{"error_type"}, // "upstream_api", "database", "validation", "other"
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp",
			Help: "Unix timestamp of last successful sync",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Share Link Metrics
	SharesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shares_created_total",
			Help: "Total number of share links created",
		},
	)

	ShareAccesses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "share_accesses_total",
			Help: "Total number of report accesses via share tokens",
		},
		[]string{"result"}, // "ok", "expired", "revoked", "invalid"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)
)

// RecordStatsCompute records one stats-engine computation.
func RecordStatsCompute(scope string, year int, duration time.Duration, err error) {
	StatsComputeDuration.WithLabelValues(scope).Observe(duration.Seconds())
	if err != nil {
		StatsComputeErrors.WithLabelValues(scope, categorizeStatsError(err)).Inc()
		return
	}
	StatsReportsComputed.WithLabelValues(scope, strconv.Itoa(year)).Inc()
}

// categorizeStatsError maps a computation error to a label value.
func categorizeStatsError(err error) string {
	msg := err.Error()
	switch {
	case contains(msg, "invalid year"):
		return "invalid_year"
	case contains(msg, "query"), contains(msg, "records"):
		return "event_log"
	default:
		return "other"
	}
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordSyncOperation records a completed (or failed) sync run.
func RecordSyncOperation(duration time.Duration, recordsProcessed int, err error) {
	SyncDuration.Observe(duration.Seconds())
	SyncRecordsProcessed.Add(float64(recordsProcessed))
	if err != nil {
		errorType := "other"
		msg := err.Error()
		switch {
		case contains(msg, "tautulli"), contains(msg, "fetch"):
			errorType = "upstream_api"
		case contains(msg, "database"), contains(msg, "insert"):
			errorType = "database"
		case contains(msg, "validation"), contains(msg, "page size"):
			errorType = "validation"
		}
		SyncErrors.WithLabelValues(errorType).Inc()
		return
	}
	SyncLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// RecordShareCreated records creation of a share link.
func RecordShareCreated() {
	SharesCreated.Inc()
}

// RecordShareAccess records a report access attempt via share token.
func RecordShareAccess(result string) {
	ShareAccesses.WithLabelValues(result).Inc()
}

// contains reports whether s contains substr.
func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
