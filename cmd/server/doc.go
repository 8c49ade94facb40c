// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

/*
Package main is the entry point for the Rewound server application.

Rewound is a self-hosted "year in review" generator for media server
playback history. It syncs play history from Tautulli into a local DuckDB
event log, computes annual per-user and server-wide reports (top titles,
watch time, streaks, percentiles), and serves them over a small REST API
with shareable, optionally anonymized report links.

# Application Architecture

The server implements a layered architecture with Suture v4 process
supervision:

	RootSupervisor ("rewound")
	├── DataSupervisor ("data-layer")
	│   ├── Cache Janitor (Badger value-log GC)
	│   └── Share Janitor (expired share purge)
	├── IngestSupervisor ("ingest-layer")
	│   └── Sync Service (Tautulli history sync, optional)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (REST API)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB event log (play history, shares)
 4. Stats cache: BadgerDB for computed server reports
 5. Event bus: in-process channels (NATS JetStream with -tags nats)
 6. Report engine: stats calculators plus viewer anonymization
 7. Shares: HS256 token issuer over the DuckDB share store
 8. Ingest: Tautulli client with circuit breaker (optional)
 9. Supervisor Tree: Suture v4 process supervision
 10. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest
priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	REWOUND_SERVER_PORT=8484         # HTTP server port
	REWOUND_LOG_LEVEL=info           # trace, debug, info, warn, error
	REWOUND_LOG_FORMAT=json          # json or console

	# Storage
	REWOUND_DATABASE_PATH=/data/rewound.duckdb
	REWOUND_CACHE_PATH=/data/cache

	# Shares and pseudonyms (both required)
	REWOUND_SHARE_SECRET=<32+ chars in production>
	REWOUND_ANONYMIZE_SALT=<server-specific salt>
	REWOUND_ANONYMIZE_DEFAULT_MODE=others   # none, others, full

	# Optional Tautulli sync
	REWOUND_TAUTULLI_ENABLED=false
	REWOUND_TAUTULLI_URL=http://localhost:8181
	REWOUND_TAUTULLI_API_KEY=<api-key>
	REWOUND_SYNC_INTERVAL=1h

A YAML config file can be passed with -config or placed at one of the
standard locations (./config.yaml, /etc/rewound/config.yaml).

# Serving Without Tautulli

Rewound can run with no upstream source at all, serving reports from
whatever the event log already contains:

	export REWOUND_SHARE_SECRET=xxx REWOUND_ANONYMIZE_SALT=yyy
	./rewound

This covers the "my server died, but I kept the database" case and makes
local development simple.

# Build Tags

Optional build tags enable additional functionality:

	go build ./cmd/server              # Standard build, in-process event bus
	go build -tags nats ./cmd/server   # NATS JetStream event bus

With the nats tag and REWOUND_NATS_ENABLED=true, sync completion events
flow through JetStream so multiple Rewound instances sharing a database
all invalidate their report caches. The default embedded server keeps
single-binary deployments broker-free.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Waits for in-flight requests (10s timeout)
 3. Stops the sync service mid-interval if needed
 4. Closes the event bus, stats cache, and database
 5. Reports any services that failed to stop

# Usage Examples

Development:

	export REWOUND_SHARE_SECRET=dev-secret REWOUND_ANONYMIZE_SALT=dev-salt
	export REWOUND_DATABASE_PATH=./rewound.duckdb REWOUND_CACHE_PATH=./cache
	go run ./cmd/server

Production with Tautulli sync:

	export REWOUND_SERVER_ENVIRONMENT=production
	export REWOUND_SHARE_SECRET=$(openssl rand -base64 32)
	export REWOUND_ANONYMIZE_SALT=$(openssl rand -base64 16)
	export REWOUND_TAUTULLI_ENABLED=true
	export REWOUND_TAUTULLI_URL=http://tautulli:8181
	export REWOUND_TAUTULLI_API_KEY=xxx
	./rewound

Docker:

	docker run -d \
	  -e REWOUND_TAUTULLI_ENABLED=true \
	  -e REWOUND_TAUTULLI_URL=http://tautulli:8181 \
	  -e REWOUND_TAUTULLI_API_KEY=xxx \
	  -e REWOUND_SHARE_SECRET=xxx \
	  -e REWOUND_ANONYMIZE_SALT=yyy \
	  -v rewound-data:/data \
	  -p 8484:8484 \
	  ghcr.io/tomtom215/rewound

# Port 8484

The default port 8484 avoids the usual media stack ports (Tautulli 8181,
Jellyfin 8096, Plex 32400), so Rewound can sit on the same host.

# API

The API serves under /api/v1:

  - Health: /health, /health/live, /health/ready
  - Reports: /rewind/users/{userID}, /rewind/server
  - Shares: POST /shares, GET /shares/{token}, DELETE /shares/{id}
  - Sync: /sync/status, POST /sync/run
  - Metrics: /metrics (Prometheus exposition)

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/stats: Report computation engine
  - internal/ingest: Tautulli history sync
*/
package main
