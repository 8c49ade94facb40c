// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package stats

import (
	"testing"

	"github.com/tomtom215/rewound/internal/models"
)

// TestFindFirstWatch tests minimum-viewedAt selection
func TestFindFirstWatch(t *testing.T) {
	records := []models.PlayHistoryRecord{
		playRecord("m2", models.MediaTypeMovie, "Heat", 5000),
		playRecord("m1", models.MediaTypeMovie, "Inception", 1000),
		playRecord("m3", models.MediaTypeMovie, "Alien", 9000),
	}

	got := FindFirstWatch(records)
	if got == nil {
		t.Fatal("expected a watch event, got nil")
	}
	if got.MediaKey != "m1" {
		t.Errorf("expected media key m1, got %s", got.MediaKey)
	}
	if got.Title != "Inception" {
		t.Errorf("expected title Inception, got %s", got.Title)
	}
	if got.ViewedAt != 1000 {
		t.Errorf("expected viewedAt 1000, got %d", got.ViewedAt)
	}
}

// TestFindLastWatch tests maximum-viewedAt selection
func TestFindLastWatch(t *testing.T) {
	records := []models.PlayHistoryRecord{
		playRecord("m2", models.MediaTypeMovie, "Heat", 5000),
		playRecord("m3", models.MediaTypeMovie, "Alien", 9000),
		playRecord("m1", models.MediaTypeMovie, "Inception", 1000),
	}

	got := FindLastWatch(records)
	if got == nil {
		t.Fatal("expected a watch event, got nil")
	}
	if got.MediaKey != "m3" {
		t.Errorf("expected media key m3, got %s", got.MediaKey)
	}
	if got.ViewedAt != 9000 {
		t.Errorf("expected viewedAt 9000, got %d", got.ViewedAt)
	}
}

// TestFindFirstLastWatch_Empty tests nil results on empty input
func TestFindFirstLastWatch_Empty(t *testing.T) {
	if got := FindFirstWatch(nil); got != nil {
		t.Errorf("expected nil first watch, got %+v", got)
	}
	if got := FindLastWatch(nil); got != nil {
		t.Errorf("expected nil last watch, got %+v", got)
	}
}

// TestFindFirstLastWatch_SingleRecord tests the degenerate one-play year
func TestFindFirstLastWatch_SingleRecord(t *testing.T) {
	records := []models.PlayHistoryRecord{
		playRecord("m1", models.MediaTypeMovie, "Inception", 4000),
	}

	first := FindFirstWatch(records)
	last := FindLastWatch(records)
	if first == nil || last == nil {
		t.Fatal("expected watch events for single record")
	}
	if first.MediaKey != last.MediaKey || first.ViewedAt != last.ViewedAt {
		t.Errorf("expected first and last to match, got %+v and %+v", first, last)
	}
}

// TestFindFirstLastWatch_TimestampTies verifies the smallest media key wins
// when records share the extreme timestamp
func TestFindFirstLastWatch_TimestampTies(t *testing.T) {
	records := []models.PlayHistoryRecord{
		playRecord("mB", models.MediaTypeMovie, "Heat", 1000),
		playRecord("mA", models.MediaTypeMovie, "Inception", 1000),
		playRecord("mC", models.MediaTypeMovie, "Alien", 1000),
	}

	first := FindFirstWatch(records)
	if first == nil || first.MediaKey != "mA" {
		t.Errorf("expected tie to resolve to mA, got %+v", first)
	}

	last := FindLastWatch(records)
	if last == nil || last.MediaKey != "mA" {
		t.Errorf("expected tie to resolve to mA, got %+v", last)
	}
}
