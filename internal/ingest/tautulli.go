// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package ingest

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tomtom215/rewound/internal/models"
)

// errSkipRecord marks a history record that cannot be mapped to a play
// event (missing account or media identity). Skipped records are counted
// but never fail the sync run.
var errSkipRecord = errors.New("skip record")

// historyEnvelope is Tautulli's standard response wrapper for get_history.
type historyEnvelope struct {
	Response struct {
		Result  string      `json:"result"`
		Message *string     `json:"message,omitempty"`
		Data    HistoryPage `json:"data"`
	} `json:"response"`
}

// HistoryPage is one page of Tautulli playback history.
type HistoryPage struct {
	RecordsFiltered int             `json:"recordsFiltered"`
	RecordsTotal    int             `json:"recordsTotal"`
	Data            []HistoryRecord `json:"data"`
}

// HistoryRecord is a single row from Tautulli's get_history endpoint,
// trimmed to the fields Rewound maps into its play history log.
//
// Pointer fields distinguish null from zero in Tautulli API responses.
// Duration is in seconds (unlike get_activity which returns milliseconds).
type HistoryRecord struct {
	UserID       *int   `json:"user_id"` // nullable in edge cases
	User         string `json:"user"`
	FriendlyName string `json:"friendly_name"`

	MediaType        string  `json:"media_type"`
	Title            string  `json:"title"`
	GrandparentTitle *string `json:"grandparent_title"` // null for movies

	RatingKey            *int `json:"rating_key"`
	GrandparentRatingKey *int `json:"grandparent_rating_key"` // null for movies

	Started  int64 `json:"started"`
	Stopped  int64 `json:"stopped"`
	Duration *int  `json:"duration"` // seconds, nullable for live sessions

	Genres           string `json:"genres"` // comma-separated
	Thumb            string `json:"thumb"`
	GrandparentThumb string `json:"grandparent_thumb"`
}

// toPlayHistory maps a Tautulli history row to Rewound's play event model.
//
// Movies keep their own identity; episodes take the series' rating key and
// title as the media identity so rankings group whole shows, with the
// episode's own title preserved separately. Rows without an account or a
// usable media key return errSkipRecord.
func (r *HistoryRecord) toPlayHistory() (models.PlayHistoryRecord, error) {
	if r.UserID == nil || *r.UserID <= 0 {
		return models.PlayHistoryRecord{}, errSkipRecord
	}
	if r.Started <= 0 {
		return models.PlayHistoryRecord{}, errSkipRecord
	}

	var mediaKey, title, episodeTitle, thumb string
	switch r.MediaType {
	case models.MediaTypeEpisode:
		if r.GrandparentRatingKey == nil {
			return models.PlayHistoryRecord{}, errSkipRecord
		}
		mediaKey = strconv.Itoa(*r.GrandparentRatingKey)
		if r.GrandparentTitle != nil {
			title = *r.GrandparentTitle
		}
		episodeTitle = r.Title
		thumb = r.GrandparentThumb
		if thumb == "" {
			thumb = r.Thumb
		}
	default:
		if r.RatingKey == nil {
			return models.PlayHistoryRecord{}, errSkipRecord
		}
		mediaKey = strconv.Itoa(*r.RatingKey)
		title = r.Title
		thumb = r.Thumb
	}

	var duration int64
	if r.Duration != nil && *r.Duration > 0 {
		duration = int64(*r.Duration)
	}

	username := r.FriendlyName
	if username == "" {
		username = r.User
	}

	return models.PlayHistoryRecord{
		AccountID:    *r.UserID,
		MediaKey:     mediaKey,
		MediaType:    r.MediaType,
		Title:        title,
		Genres:       splitWireList(r.Genres),
		ViewedAt:     r.Started,
		Duration:     duration,
		Username:     username,
		Thumb:        thumb,
		EpisodeTitle: episodeTitle,
		Source:       "tautulli",
	}, nil
}

// splitWireList splits Tautulli's comma-separated list fields, dropping
// empty entries.
func splitWireList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
