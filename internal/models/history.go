// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

// Package models provides data structures for the Rewound application.
// This file contains the play-history event model fed by ingestion.
package models

// Media type values for PlayHistoryRecord.
const (
	MediaTypeMovie   = "movie"
	MediaTypeEpisode = "episode"
	MediaTypeTrack   = "track"
)

// OwnerAccountID is the conventional account ID of the server owner.
const OwnerAccountID = 1

// PlayHistoryRecord is a single play event from a media server's watch
// history. Records are immutable and append-only; they are retained even
// after the owning account is removed so old reports stay complete.
//
// For episodes, MediaKey and Title identify the series (ingestion maps
// grandparent fields), so rankings group whole shows rather than single
// episodes; the episode's own title is kept in EpisodeTitle.
type PlayHistoryRecord struct {
	AccountID int      `json:"account_id" validate:"required,min=1"`
	MediaKey  string   `json:"media_key" validate:"required"`
	MediaType string   `json:"media_type" validate:"required"`
	Title     string   `json:"title"`
	Genres    []string `json:"genres,omitempty"`
	ViewedAt  int64    `json:"viewed_at" validate:"required"` // unix seconds, UTC
	Duration  int64    `json:"duration" validate:"min=0"`     // seconds

	// Presentation extras carried from ingestion.
	Username     string `json:"username,omitempty"`
	Thumb        string `json:"thumb,omitempty"`
	EpisodeTitle string `json:"episode_title,omitempty"`
	Source       string `json:"source,omitempty"`
}
