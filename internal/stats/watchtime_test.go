// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package stats

import (
	"testing"

	"github.com/tomtom215/rewound/internal/models"
)

// TestCalculateWatchTime tests aggregate watch time totals
func TestCalculateWatchTime(t *testing.T) {
	tests := []struct {
		name            string
		durations       []int64
		expectedMinutes int64
		expectedPlays   int
	}{
		{
			name:            "empty input",
			durations:       nil,
			expectedMinutes: 0,
			expectedPlays:   0,
		},
		{
			name:            "single exact hour",
			durations:       []int64{3600},
			expectedMinutes: 60,
			expectedPlays:   1,
		},
		{
			name:            "rounds half up at boundary",
			durations:       []int64{90},
			expectedMinutes: 2,
			expectedPlays:   1,
		},
		{
			name:            "rounds down below half",
			durations:       []int64{89},
			expectedMinutes: 1,
			expectedPlays:   1,
		},
		{
			name:            "sub-minute play rounds to one",
			durations:       []int64{30},
			expectedMinutes: 1,
			expectedPlays:   1,
		},
		{
			name:            "sub-half-minute play rounds to zero",
			durations:       []int64{29},
			expectedMinutes: 0,
			expectedPlays:   1,
		},
		{
			name:            "zero duration still counts as play",
			durations:       []int64{0},
			expectedMinutes: 0,
			expectedPlays:   1,
		},
		{
			// 3x100s = 300s = exactly 5 minutes. Per-record rounding would
			// have produced 2+2+2 = 6.
			name:            "rounding applied once at the boundary",
			durations:       []int64{100, 100, 100},
			expectedMinutes: 5,
			expectedPlays:   3,
		},
		{
			name:            "typical mixed set",
			durations:       []int64{2700, 5400, 1800, 45},
			expectedMinutes: 166,
			expectedPlays:   4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]models.PlayHistoryRecord, len(tt.durations))
			for i, d := range tt.durations {
				records[i] = models.PlayHistoryRecord{
					AccountID: 1,
					MediaKey:  "m1",
					MediaType: models.MediaTypeMovie,
					ViewedAt:  1735689600 + int64(i)*7200,
					Duration:  d,
				}
			}

			got := CalculateWatchTime(records)
			if got.TotalMinutes != tt.expectedMinutes {
				t.Errorf("expected %d minutes, got %d", tt.expectedMinutes, got.TotalMinutes)
			}
			if got.TotalPlays != tt.expectedPlays {
				t.Errorf("expected %d plays, got %d", tt.expectedPlays, got.TotalPlays)
			}
		})
	}
}

// TestRoundSecondsToMinutes tests the shared rounding helper
func TestRoundSecondsToMinutes(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int64
		expected int64
	}{
		{"zero", 0, 0},
		{"negative clamps to zero", -120, 0},
		{"one second", 1, 0},
		{"just below half minute", 29, 0},
		{"exactly half minute rounds up", 30, 1},
		{"one minute", 60, 1},
		{"89 seconds stays one minute", 89, 1},
		{"90 seconds rounds to two", 90, 2},
		{"one hour", 3600, 60},
		{"one hour and 29 seconds", 3629, 60},
		{"one hour and 30 seconds", 3630, 61},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundSecondsToMinutes(tt.seconds)
			if got != tt.expected {
				t.Errorf("roundSecondsToMinutes(%d) = %d, expected %d", tt.seconds, got, tt.expected)
			}
		})
	}
}
