// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

// Package models provides data structures for the Rewound application.
// This file contains the annual statistics models produced by the stats engine.
package models

import "time"

// StatsScope selects whose records a stats computation covers.
type StatsScope string

// Stats scope values.
const (
	ScopeUser   StatsScope = "user"
	ScopeServer StatsScope = "server"
)

// Valid reports whether the scope is one of the known values.
func (s StatsScope) Valid() bool {
	switch s {
	case ScopeUser, ScopeServer:
		return true
	default:
		return false
	}
}

// UserStats is the complete annual report for a single account.
//
// The invariant sum(WatchTimeByMonth.Minutes) == TotalWatchTimeMinutes holds
// within per-bucket rounding tolerance: both derive from the same record
// snapshot, with minute rounding applied only at aggregate boundaries.
type UserStats struct {
	UserID                int                 `json:"user_id"`
	Year                  int                 `json:"year"`
	TotalWatchTimeMinutes int64               `json:"total_watch_time_minutes"`
	TotalPlays            int                 `json:"total_plays"`
	TopMovies             []RankedItem        `json:"top_movies"`
	TopShows              []RankedItem        `json:"top_shows"`
	TopGenres             []RankedItem        `json:"top_genres"`
	WatchTimeByMonth      MonthlyDistribution `json:"watch_time_by_month"`
	WatchTimeByHour       HourlyDistribution  `json:"watch_time_by_hour"`
	PercentileRank        int                 `json:"percentile_rank"` // 0-100
	LongestBinge          *BingeSession       `json:"longest_binge"`
	FirstWatch            *WatchEvent         `json:"first_watch"`
	LastWatch             *WatchEvent         `json:"last_watch"`
	GeneratedAt           time.Time           `json:"generated_at"`
}

// ServerStats is the annual report aggregated across all accounts.
// Structurally parallel to UserStats; adds TotalUsers and TopViewers and
// omits the per-user percentile rank.
type ServerStats struct {
	Year                  int                 `json:"year"`
	TotalUsers            int                 `json:"total_users"`
	TotalWatchTimeMinutes int64               `json:"total_watch_time_minutes"`
	TotalPlays            int                 `json:"total_plays"`
	TopMovies             []RankedItem        `json:"top_movies"`
	TopShows              []RankedItem        `json:"top_shows"`
	TopGenres             []RankedItem        `json:"top_genres"`
	TopViewers            []TopViewer         `json:"top_viewers"`
	WatchTimeByMonth      MonthlyDistribution `json:"watch_time_by_month"`
	WatchTimeByHour       HourlyDistribution  `json:"watch_time_by_hour"`
	LongestBinge          *BingeSession       `json:"longest_binge"`
	FirstWatch            *WatchEvent         `json:"first_watch"`
	LastWatch             *WatchEvent         `json:"last_watch"`
	GeneratedAt           time.Time           `json:"generated_at"`
}

// RankedItem is one entry of a top-N list. Ranks are dense and 1-based;
// ties keep first-seen order, so equal counts never produce rank gaps.
type RankedItem struct {
	Rank  int    `json:"rank"`
	Key   string `json:"key,omitempty"` // media key, or genre name for genre ranks
	Title string `json:"title"`
	Count int    `json:"count"`
	Thumb string `json:"thumb,omitempty"`
}

// TopViewer is one entry of the server-wide viewer leaderboard, ranked by
// total watch time.
type TopViewer struct {
	Rank         int    `json:"rank"`
	UserID       int    `json:"user_id"`
	Username     string `json:"username"`
	TotalMinutes int64  `json:"total_minutes"`
}

// MonthlyDistribution buckets watch activity by calendar month (UTC).
// Index 0 is January. Arrays keep their full length regardless of data
// sparsity; empty months stay zero.
type MonthlyDistribution struct {
	Minutes [12]int64 `json:"minutes"`
	Plays   [12]int   `json:"plays"`
}

// HourlyDistribution buckets watch activity by hour of day (UTC), index 0-23.
type HourlyDistribution struct {
	Minutes [24]int64 `json:"minutes"`
	Plays   [24]int   `json:"plays"`
}

// BingeSession is a maximal run of plays whose inter-play gaps never exceed
// the binge threshold. Only runs of two or more plays qualify.
type BingeSession struct {
	StartTime    int64    `json:"start_time"` // unix seconds of the first play
	EndTime      int64    `json:"end_time"`   // unix seconds when the last play finished
	TotalMinutes int64    `json:"total_minutes"`
	ItemCount    int      `json:"item_count"`
	Titles       []string `json:"titles"`
}

// WatchEvent identifies a single play at the edge of the year (first or
// last watch).
type WatchEvent struct {
	MediaKey  string `json:"media_key"`
	Title     string `json:"title"`
	MediaType string `json:"media_type"`
	ViewedAt  int64  `json:"viewed_at"`
	Thumb     string `json:"thumb,omitempty"`
}

// UserWatchTotal is one account's aggregate watch time for a year, used as
// percentile input and as the topViewers source.
type UserWatchTotal struct {
	UserID       int    `json:"user_id"`
	Username     string `json:"username"`
	TotalSeconds int64  `json:"total_seconds"`
	Plays        int    `json:"plays"`
}
