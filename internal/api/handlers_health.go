// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/rewound/internal/models"
)

// Health returns the full health report: database connectivity, Tautulli
// connectivity, last sync time, and uptime.
//
// Method: GET
// Path: /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	// Check database connectivity (nil means not connected)
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	// Check Tautulli connectivity (nil means not configured)
	tautulliConnected := h.client != nil && h.client.Ping(r.Context()) == nil

	// Determine mode: standalone (serving the existing event log) or
	// tautulli (with live ingestion)
	tautulliEnabled := h.config != nil && h.config.Tautulli.Enabled
	mode := "standalone"
	if tautulliEnabled {
		mode = "tautulli"
	}

	// Healthy needs the database; the Tautulli link only counts when
	// ingestion is enabled.
	status := "healthy"
	if !dbConnected {
		status = "degraded"
	} else if tautulliEnabled && !tautulliConnected {
		status = "degraded"
	}

	var lastSyncPtr *time.Time
	if h.sync != nil {
		lastSyncPtr = h.sync.Status().LastSyncAt
	}

	health := models.HealthStatus{
		Status:            status,
		Mode:              mode,
		Version:           "1.0.0",
		DatabaseConnected: dbConnected,
		TautulliConnected: tautulliConnected,
		LastSyncTime:      lastSyncPtr,
		Uptime:            time.Since(h.startTime).Seconds(),
	}

	// Report log size when the database answers. Count failures leave the
	// zero values in place rather than degrading the health report.
	if dbConnected {
		if records, err := h.db.CountRecords(r.Context()); err == nil {
			health.RecordCount = records
		}
		if accounts, err := h.db.DistinctAccountCount(r.Context()); err == nil {
			health.AccountCount = accounts
		}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
//
// Method: GET
// Path: /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 OK only if the service is ready to handle traffic: the
// database must answer, and Tautulli must answer when ingestion is
// enabled. Returns 503 otherwise.
//
// Method: GET
// Path: /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil
	tautulliConnected := h.client != nil && h.client.Ping(r.Context()) == nil

	tautulliEnabled := h.config != nil && h.config.Tautulli.Enabled
	ready := dbConnected && (!tautulliEnabled || tautulliConnected)

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"database_connected": dbConnected,
			"tautulli_connected": tautulliConnected,
			"ready_to_serve":     ready,
			"uptime":             time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
