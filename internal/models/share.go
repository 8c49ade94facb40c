// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

// Package models provides data structures for the Rewound application.
// This file contains the share-link model for publishing annual reports.
package models

import "time"

// AnonymizeMode controls how viewer usernames appear in shared reports.
// The set is closed; consumers switch exhaustively and reject unknown values.
type AnonymizeMode string

// Anonymize mode values.
const (
	// AnonymizeNone leaves every username untouched.
	AnonymizeNone AnonymizeMode = "none"
	// AnonymizeOthers replaces every username except the viewing user's.
	AnonymizeOthers AnonymizeMode = "others"
	// AnonymizeFull replaces every username including the viewing user's.
	AnonymizeFull AnonymizeMode = "full"
)

// Valid reports whether the mode is one of the known values.
func (m AnonymizeMode) Valid() bool {
	switch m {
	case AnonymizeNone, AnonymizeOthers, AnonymizeFull:
		return true
	default:
		return false
	}
}

// Share is a stored grant of access to one computed report. The public URL
// carries a signed token referencing Share.ID; revocation and expiry are
// checked against this record on every access.
type Share struct {
	ID        string        `json:"id"`
	Scope     StatsScope    `json:"scope" validate:"required"`
	ScopeID   int           `json:"scope_id"` // account ID for user scope, 0 for server scope
	Year      int           `json:"year" validate:"required,min=2000,max=2100"`
	Mode      AnonymizeMode `json:"mode" validate:"required"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	Revoked   bool          `json:"revoked"`
}

// Expired reports whether the share has passed its expiry at the given time.
func (s *Share) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
