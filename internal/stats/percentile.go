// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package stats

import "math"

// CalculatePercentileRank places a user's watch total among all users'
// totals for the same year.
//
// Convention: the percentage of users with strictly less watch time than
// the target, rounded to the nearest integer. Two documented edge rules:
// a user with zero watch time scores 0 regardless of peers, and a user
// alone on the server scores 100.
func CalculatePercentileRank(targetSeconds int64, allTotals []int64) int {
	if targetSeconds <= 0 {
		return 0
	}
	if len(allTotals) <= 1 {
		return 100
	}

	below := 0
	for _, total := range allTotals {
		if total < targetSeconds {
			below++
		}
	}
	return int(math.Round(float64(below) / float64(len(allTotals)) * 100))
}
