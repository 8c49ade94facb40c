// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

/*
Package models defines data structures shared across the Rewound application.

This package contains the data models used throughout the application:
the play history event log schema, computed report structures, share link
records, and the API response envelope. It serves as the single source of
truth for data structure definitions and carries no behavior beyond small
validity helpers.

Model Categories:

1. Event Log Models:
  - PlayHistoryRecord: One playback event, keyed by (account, media, start)
  - UserWatchTotal: Per-user aggregate used for leaderboards and percentiles

2. Report Models:
  - UserStats: A user's annual report (totals, top lists, streaks, timing)
  - ServerStats: The server-wide annual report with TopViewers
  - RankedItem, TopViewer, BingeSession, WatchEvent: report components
  - MonthlyDistribution, HourlyDistribution: when-people-watch histograms

3. Share Models:
  - Share: A stored share link with scope, year, mode, and lifetime
  - AnonymizeMode: none, others, full (see internal/anonymize)
  - StatsScope: user or server

4. API Models:
  - APIResponse: Standard response wrapper with status and metadata
  - APIError: Error code, message, and optional details
  - HealthStatus: Health endpoint payload

Usage Example:

	import "github.com/tomtom215/rewound/internal/models"

	rec := models.PlayHistoryRecord{
	    AccountID: 1,
	    Username:  "alice",
	    MediaType: models.MediaTypeMovie,
	    MediaKey:  "m-100",
	    Title:     "Heat",
	    ViewedAt:  started.Unix(),
	    Duration:  7200,
	}

JSON tags follow snake_case throughout; report payloads are encoded with
goccy/go-json at the API layer. Time fields on the event log are Unix
seconds (matching Tautulli), while share records use time.Time.
*/
package models
