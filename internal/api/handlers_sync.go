// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/rewound/internal/ingest"
	"github.com/tomtom215/rewound/internal/logging"
	"github.com/tomtom215/rewound/internal/models"
)

// SyncStatus returns the current ingest sync state.
//
// Method: GET
// Path: /api/v1/sync/status
//
// With Tautulli ingestion disabled the status reports enabled: false and
// zero values; the endpoint itself always answers.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	status := ingest.Status{}
	if h.sync != nil {
		status = h.sync.Status()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   status,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// SyncRun triggers a sync pass against Tautulli.
//
// Method: POST
// Path: /api/v1/sync/run
//
// The sync runs in the background; the endpoint answers 202 immediately.
// Passes serialize, so triggering during a running pass queues at most one
// more. Returns 503 when ingestion is disabled.
func (h *Handler) SyncRun(w http.ResponseWriter, r *http.Request) {
	if h.sync == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Sync is not enabled", nil)
		return
	}

	go func() {
		if err := h.sync.TriggerSync(context.Background()); err != nil {
			logging.Error().Err(err).Msg("Manual sync failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, &models.APIResponse{
		Status: "success",
		Data:   map[string]string{"message": "Sync triggered"},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
