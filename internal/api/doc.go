// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

/*
Package api provides the HTTP layer for the Rewound application.

The package is built on the Chi router with middleware from the Chi
ecosystem (go-chi/cors, go-chi/httprate) plus the in-house middleware
package for request IDs, Prometheus instrumentation, gzip compression,
and share-lookup rate limiting.

Handler methods are split across files by concern:
  - handlers.go: Handler struct, constructor, guards
  - handlers_helpers.go: response envelope and parameter helpers
  - handlers_health.go: health and probe endpoints
  - handlers_rewind.go: annual report endpoints
  - handlers_shares.go: share link create/lookup/revoke
  - handlers_sync.go: ingest sync status and trigger

Every endpoint responds with the models.APIResponse envelope. Error
responses carry a machine-readable code (INVALID_YEAR, NOT_FOUND,
SHARE_EXPIRED, ...) next to a human-readable message.

Routes (all under /api/v1):

	GET    /health                   full health report
	GET    /health/live              liveness probe
	GET    /health/ready             readiness probe
	GET    /rewind/users/{userID}    per-user annual report, ?year= required
	GET    /rewind/server            server-wide annual report, ?year= required
	POST   /shares                   create a share link
	GET    /shares/{token}           resolve a share link (public)
	DELETE /shares/{id}              revoke a share link
	GET    /sync/status              ingest sync state
	POST   /sync/run                 trigger a sync pass

Prometheus metrics are exposed at /metrics outside the versioned tree.
*/
package api
