// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package models

import (
	"testing"
	"time"
)

func TestStatsScopeValid(t *testing.T) {
	tests := []struct {
		scope StatsScope
		want  bool
	}{
		{ScopeUser, true},
		{ScopeServer, true},
		{StatsScope(""), false},
		{StatsScope("global"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.scope), func(t *testing.T) {
			if got := tt.scope.Valid(); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.scope, got, tt.want)
			}
		})
	}
}

func TestAnonymizeModeValid(t *testing.T) {
	tests := []struct {
		mode AnonymizeMode
		want bool
	}{
		{AnonymizeNone, true},
		{AnonymizeOthers, true},
		{AnonymizeFull, true},
		{AnonymizeMode(""), false},
		{AnonymizeMode("partial"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			if got := tt.mode.Valid(); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestShareExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"future expiry", now.Add(time.Hour), false},
		{"past expiry", now.Add(-time.Hour), true},
		{"zero expiry never expires", time.Time{}, false},
		{"exact boundary not expired", now, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Share{ExpiresAt: tt.expiresAt}
			if got := s.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
