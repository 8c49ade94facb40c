// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package stats

import "github.com/tomtom215/rewound/internal/models"

// FindFirstWatch returns the play with the minimum viewedAt in the record
// set, or nil for empty input. Records sharing the extreme timestamp
// resolve to the lexicographically smallest media key, keeping the result
// deterministic.
func FindFirstWatch(records []models.PlayHistoryRecord) *models.WatchEvent {
	return findExtremeWatch(records, func(candidate, current *models.PlayHistoryRecord) bool {
		if candidate.ViewedAt != current.ViewedAt {
			return candidate.ViewedAt < current.ViewedAt
		}
		return candidate.MediaKey < current.MediaKey
	})
}

// FindLastWatch returns the play with the maximum viewedAt in the record
// set, or nil for empty input. Same media-key tie rule as FindFirstWatch.
func FindLastWatch(records []models.PlayHistoryRecord) *models.WatchEvent {
	return findExtremeWatch(records, func(candidate, current *models.PlayHistoryRecord) bool {
		if candidate.ViewedAt != current.ViewedAt {
			return candidate.ViewedAt > current.ViewedAt
		}
		return candidate.MediaKey < current.MediaKey
	})
}

// findExtremeWatch scans once, replacing the current pick whenever better
// reports true.
func findExtremeWatch(records []models.PlayHistoryRecord, better func(candidate, current *models.PlayHistoryRecord) bool) *models.WatchEvent {
	if len(records) == 0 {
		return nil
	}

	pick := &records[0]
	for i := 1; i < len(records); i++ {
		if better(&records[i], pick) {
			pick = &records[i]
		}
	}

	return &models.WatchEvent{
		MediaKey:  pick.MediaKey,
		Title:     pick.Title,
		MediaType: pick.MediaType,
		ViewedAt:  pick.ViewedAt,
		Thumb:     pick.Thumb,
	}
}
