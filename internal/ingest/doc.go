// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

/*
Package ingest pulls playback history from Tautulli into the event log.

This package implements the acquisition side of the year-in-review pipeline:
fetching playback history pages from the Tautulli API, mapping wire records
to play events, and storing them through the database batch writer. It
provides automatic periodic synchronization, manual sync triggers, and
circuit breaker protection for fault tolerance.

Key Components:

  - Service: Orchestrates periodic synchronization with a configurable interval
  - Client: HTTP client for the Tautulli v2 API with rate limiting and
    HTTP 429 exponential backoff
  - BreakerClient: Circuit breaker wrapper that sheds load when Tautulli
    is failing
  - Paginator: Offset-based page walker over the DataTables-style history
    endpoint

Architecture:

Each sync pass is incremental. The service reads the newest stored
viewed_at timestamp as its watermark, asks Tautulli for history after that
date, and walks the result page by page. Because the watermark is
date-granular the first page of a pass can overlap the previous pass; the
event log's unique index makes those replays idempotent, so a pass never
needs to track partial progress.

Records that cannot be attributed to a user and a media item (missing
user ID, missing rating key, zero start time) are skipped and counted
rather than stored half-formed.
*/
package ingest
