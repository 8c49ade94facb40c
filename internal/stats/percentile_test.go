// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package stats

import "testing"

// TestCalculatePercentileRank tests the strictly-below convention against a
// five-user ladder
func TestCalculatePercentileRank(t *testing.T) {
	ladder := []int64{100, 200, 300, 400, 500}

	tests := []struct {
		name     string
		target   int64
		expected int
	}{
		{"lowest positive total", 100, 0},
		{"second lowest", 200, 20},
		{"middle", 300, 40},
		{"second highest", 400, 60},
		{"highest", 500, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePercentileRank(tt.target, ladder)
			if got != tt.expected {
				t.Errorf("CalculatePercentileRank(%d) = %d, expected %d", tt.target, got, tt.expected)
			}
		})
	}
}

// TestCalculatePercentileRank_EdgeRules tests the documented edge behavior
func TestCalculatePercentileRank_EdgeRules(t *testing.T) {
	tests := []struct {
		name      string
		target    int64
		allTotals []int64
		expected  int
	}{
		{"zero watch time scores zero", 0, []int64{100, 200, 300}, 0},
		{"negative total scores zero", -50, []int64{100, 200}, 0},
		{"zero watch time alone scores zero", 0, []int64{0}, 0},
		{"only user on server scores 100", 500, []int64{500}, 100},
		{"positive target with empty totals scores 100", 500, nil, 100},
		{"all users tied scores zero", 300, []int64{300, 300, 300}, 0},
		{"above everyone", 1000, []int64{100, 200, 300}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePercentileRank(tt.target, tt.allTotals)
			if got != tt.expected {
				t.Errorf("CalculatePercentileRank(%d, %v) = %d, expected %d",
					tt.target, tt.allTotals, got, tt.expected)
			}
		})
	}
}

// TestCalculatePercentileRank_Rounding tests nearest-integer rounding of
// the percentage
func TestCalculatePercentileRank_Rounding(t *testing.T) {
	tests := []struct {
		name      string
		target    int64
		allTotals []int64
		expected  int
	}{
		// 1 of 3 below -> 33.33 -> 33
		{"rounds down", 200, []int64{100, 200, 300}, 33},
		// 2 of 3 below -> 66.67 -> 67
		{"rounds up", 300, []int64{100, 200, 300}, 67},
		// 1 of 2 below -> 50
		{"exact half", 200, []int64{100, 200}, 50},
		// 5 of 6 below -> 83.33 -> 83
		{"larger population", 600, []int64{100, 200, 300, 400, 500, 600}, 83},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePercentileRank(tt.target, tt.allTotals)
			if got != tt.expected {
				t.Errorf("CalculatePercentileRank(%d, %v) = %d, expected %d",
					tt.target, tt.allTotals, got, tt.expected)
			}
		})
	}
}
