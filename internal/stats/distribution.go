// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package stats

import (
	"time"

	"github.com/tomtom215/rewound/internal/models"
)

// CalculateMonthlyDistribution buckets plays and watch minutes by UTC
// calendar month, index 0 = January. Seconds accumulate per bucket and are
// converted to minutes once per bucket, never per record.
func CalculateMonthlyDistribution(records []models.PlayHistoryRecord) models.MonthlyDistribution {
	var seconds [12]int64
	var dist models.MonthlyDistribution

	for i := range records {
		r := &records[i]
		month := int(time.Unix(r.ViewedAt, 0).UTC().Month()) - 1
		seconds[month] += r.Duration
		dist.Plays[month]++
	}

	for i, s := range seconds {
		dist.Minutes[i] = roundSecondsToMinutes(s)
	}
	return dist
}

// CalculateHourlyDistribution buckets plays and watch minutes by UTC hour
// of day, index 0-23. Same rounding rules as the monthly distribution.
func CalculateHourlyDistribution(records []models.PlayHistoryRecord) models.HourlyDistribution {
	var seconds [24]int64
	var dist models.HourlyDistribution

	for i := range records {
		r := &records[i]
		hour := time.Unix(r.ViewedAt, 0).UTC().Hour()
		seconds[hour] += r.Duration
		dist.Plays[hour]++
	}

	for i, s := range seconds {
		dist.Minutes[i] = roundSecondsToMinutes(s)
	}
	return dist
}
