// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package stats

import "github.com/tomtom215/rewound/internal/models"

// WatchTime holds the aggregate viewing totals for one record set.
type WatchTime struct {
	TotalMinutes int64
	TotalPlays   int
}

// CalculateWatchTime sums play durations for a record set. Seconds are
// accumulated as integers and converted to minutes only at the boundary,
// rounding half up, so per-record rounding error never compounds. Empty
// input yields zero totals.
func CalculateWatchTime(records []models.PlayHistoryRecord) WatchTime {
	var seconds int64
	for i := range records {
		seconds += records[i].Duration
	}
	return WatchTime{
		TotalMinutes: roundSecondsToMinutes(seconds),
		TotalPlays:   len(records),
	}
}

// sumSeconds returns the raw duration total for a record set.
func sumSeconds(records []models.PlayHistoryRecord) int64 {
	var seconds int64
	for i := range records {
		seconds += records[i].Duration
	}
	return seconds
}

// roundSecondsToMinutes converts non-negative seconds to minutes, rounding
// half up.
func roundSecondsToMinutes(seconds int64) int64 {
	if seconds <= 0 {
		return 0
	}
	return (seconds + 30) / 60
}
