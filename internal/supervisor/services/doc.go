// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

/*
Package services provides suture.Service wrappers for Rewound components.

This package adapts application components to the suture v4 supervision
model, translating their native lifecycle patterns (ListenAndServe, a
periodic GC method) into suture's context-aware Serve pattern.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Lifecycle translation into the Serve pattern
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts the ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

Cache Janitor (CacheJanitorService):
  - Runs BadgerDB value-log GC for the stats cache on a ticker
  - GC failures are logged and retried on the next tick, not propagated
  - Interval comes from REWOUND_CACHE_GC_INTERVAL (default 1h)

Share Janitor (ShareJanitorService):
  - Deletes expired share links on a daily ticker
  - Expired shares already fail verification; this is table hygiene

The Tautulli sync service (internal/ingest) needs no wrapper: its Serve
method already implements suture.Service and is registered on the tree
directly via AddIngestService.

# Usage Example

	import (
	    "net/http"
	    "time"

	    "github.com/tomtom215/rewound/internal/supervisor"
	    "github.com/tomtom215/rewound/internal/supervisor/services"
	)

	func setupSupervisor(server *http.Server, statsCache *cache.StatsCache, syncSvc *ingest.Service) {
	    tree, err := supervisor.NewSupervisorTree(logger, config)
	    if err != nil {
	        log.Fatal(err)
	    }

	    tree.AddDataService(services.NewCacheJanitorService(statsCache, time.Hour))
	    tree.AddDataService(services.NewShareJanitorService(shareService, 24*time.Hour))
	    tree.AddIngestService(syncSvc)
	    tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	    tree.Serve(ctx)
	}

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

# Service Identification

All services implement fmt.Stringer for logging:

	func (h *HTTPServerService) String() string {
	    return "http-server"
	}

Suture uses this for log messages:

	INFO http-server: starting
	INFO http-server: stopped
	ERROR http-server: restarting after failure

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: Underlying supervision library
  - internal/cache: Stats cache whose RunGC the janitor drives
  - internal/share: Share service whose PurgeExpired the janitor drives
  - internal/ingest: Sync service that implements suture.Service itself
*/
package services
