// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

// Package api provides HTTP handlers for the Rewound application.
//
// handlers_rewind.go - Annual Report API Handlers
//
// This file contains HTTP handlers for the year-in-review reports. Users
// can fetch personalized annual reports with statistics about their media
// consumption; the server-wide variant aggregates across all accounts.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/rewound/internal/anonymize"
	"github.com/tomtom215/rewound/internal/logging"
	"github.com/tomtom215/rewound/internal/models"
)

// RewindUser returns the annual report for a specific user and year.
//
// Method: GET
// Path: /api/v1/rewind/users/{userID}
//
// URL Parameters:
//   - userID: The account ID to build the report for
//
// Query Parameters:
//   - year: The report year (required, e.g. 2025)
//
// Response: UserStats with watch time, top lists, distributions,
// percentile rank, binge run, and first/last watch.
func (h *Handler) RewindUser(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_YEAR", err.Error(), nil)
		return
	}

	userIDStr := chi.URLParam(r, "userID")
	userID, err := strconv.Atoi(userIDStr)
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID format", nil)
		return
	}

	start := time.Now()
	report, err := h.engine.CalculateUserStats(r.Context(), userID, year)
	if err != nil {
		logging.Error().Err(err).Int("year", year).Int("user_id", userID).Msg("Failed to compute user report")
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to compute user report", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   report,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// RewindServer returns the server-wide annual report for a year.
//
// Method: GET
// Path: /api/v1/rewind/server
//
// Query Parameters:
//   - year: The report year (required, e.g. 2025)
//   - anonymize: Optional mode override (none, others, full). Without it
//     the configured default mode applies.
//
// Viewer usernames in the leaderboard are transformed according to the
// anonymize mode. Requests carry no identity, so the "others" mode
// pseudonymizes every entry.
func (h *Handler) RewindServer(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_YEAR", err.Error(), nil)
		return
	}

	override := r.URL.Query().Get("anonymize")
	var overrideMode models.AnonymizeMode
	if override != "" {
		overrideMode, err = anonymize.ParseMode(override)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid anonymize mode: must be none, others, or full", nil)
			return
		}
	}

	start := time.Now()
	var report *models.ServerStats
	if override != "" && h.anonymizer != nil {
		report, err = h.engine.CalculateServerStats(r.Context(), year)
		if err == nil {
			out := *report
			out.TopViewers = h.anonymizer.ApplyMode(report.TopViewers, overrideMode, 0)
			report = &out
		}
	} else {
		report, err = h.engine.GetServerStatsWithAnonymization(r.Context(), year, 0)
	}
	if err != nil {
		logging.Error().Err(err).Int("year", year).Msg("Failed to compute server report")
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to compute server report", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   report,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
