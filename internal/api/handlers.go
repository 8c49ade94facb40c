// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/rewound/internal/anonymize"
	"github.com/tomtom215/rewound/internal/config"
	"github.com/tomtom215/rewound/internal/database"
	"github.com/tomtom215/rewound/internal/ingest"
	"github.com/tomtom215/rewound/internal/share"
	"github.com/tomtom215/rewound/internal/stats"
)

// Handler contains dependencies for API handlers.
//
// The sync service and history client are optional: both are nil when
// Tautulli ingestion is disabled, and the affected endpoints degrade to
// explicit "not enabled" responses instead of failing.
type Handler struct {
	db         *database.DB
	engine     *stats.Engine
	anonymizer *anonymize.Anonymizer
	shares     *share.Service
	sync       *ingest.Service
	client     ingest.HistorySource
	config     *config.Config
	startTime  time.Time
}

// NewHandler creates a new API handler with all required dependencies.
//
// Dependencies:
//   - db: Database connection for readiness checks
//   - engine: Stats engine computing annual reports
//   - anonymizer: Username pseudonym transform for shared reports
//   - shares: Share link service (create/resolve/revoke)
//   - syncSvc: Ingest sync service, nil when Tautulli is disabled
//   - client: Tautulli client for health checks, nil when disabled
//   - cfg: Application configuration
func NewHandler(db *database.DB, engine *stats.Engine, anonymizer *anonymize.Anonymizer, shares *share.Service, syncSvc *ingest.Service, client ingest.HistorySource, cfg *config.Config) *Handler {
	return &Handler{
		db:         db,
		engine:     engine,
		anonymizer: anonymizer,
		shares:     shares,
		sync:       syncSvc,
		client:     client,
		config:     cfg,
		startTime:  time.Now(),
	}
}

// requireDB checks database availability and returns true if available, false if error was sent
func (h *Handler) requireDB(w http.ResponseWriter) bool {
	if h.db == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Database not available", nil)
		return false
	}
	return true
}
