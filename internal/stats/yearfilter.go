// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package stats

import (
	"fmt"
	"time"
)

// Year bounds accepted by the engine. Anything outside is rejected before
// touching the event log.
const (
	MinYear = 2000
	MaxYear = 2100
)

// InvalidYearError reports a year outside the accepted range.
type InvalidYearError struct {
	Year int
}

func (e *InvalidYearError) Error() string {
	return fmt.Sprintf("invalid year %d: must be between %d and %d", e.Year, MinYear, MaxYear)
}

// YearFilter holds the inclusive unix-second bounds of one calendar year in
// UTC. A record belongs to the year iff
// StartTimestamp <= viewedAt <= EndTimestamp.
type YearFilter struct {
	Year           int   `json:"year"`
	StartTimestamp int64 `json:"start_timestamp"` // Jan 1 00:00:00 UTC
	EndTimestamp   int64 `json:"end_timestamp"`   // Dec 31 23:59:59 UTC
}

// NewYearFilter derives the UTC bounds for the given calendar year.
func NewYearFilter(year int) (YearFilter, error) {
	if year < MinYear || year > MaxYear {
		return YearFilter{}, &InvalidYearError{Year: year}
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	return YearFilter{
		Year:           year,
		StartTimestamp: start.Unix(),
		EndTimestamp:   end.Unix(),
	}, nil
}

// Contains reports whether the timestamp falls inside the year bounds.
func (f YearFilter) Contains(viewedAt int64) bool {
	return viewedAt >= f.StartTimestamp && viewedAt <= f.EndTimestamp
}
