// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

// Package api provides HTTP handlers for the Rewound application.
//
// handlers_shares.go - Share Link API Handlers
//
// Share links grant anonymous access to one computed report. Creation and
// revocation are management operations; lookup is the public path and sits
// behind its own per-IP rate limiter in the router.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/rewound/internal/logging"
	"github.com/tomtom215/rewound/internal/models"
	"github.com/tomtom215/rewound/internal/share"
	"github.com/tomtom215/rewound/internal/stats"
)

// CreateShareRequest is the POST /shares body.
type CreateShareRequest struct {
	Scope    string `json:"scope" validate:"required,oneof=user server"`
	ScopeID  int    `json:"scope_id" validate:"gte=0"` // account ID, required for user scope
	Year     int    `json:"year" validate:"required,min=2000,max=2100"`
	Mode     string `json:"mode" validate:"omitempty,anonymize_mode"` // defaults to the configured mode
	TTLHours int    `json:"ttl_hours" validate:"gte=0"`               // 0 applies the configured default lifetime
}

// ShareCreateResponse carries the stored share and its signed token. The
// token appears only here; it cannot be recovered later.
type ShareCreateResponse struct {
	Share *models.Share `json:"share"`
	Token string        `json:"token"`
}

// SharedReportResponse is the payload served for a resolved share link.
type SharedReportResponse struct {
	Scope     models.StatsScope `json:"scope"`
	Year      int               `json:"year"`
	ExpiresAt time.Time         `json:"expires_at"`
	Report    interface{}       `json:"report"`
}

// ShareCreate creates a share link for a computed report.
//
// Method: POST
// Path: /api/v1/shares
//
// Request Body:
//
//	{
//	  "scope": "user",     // "user" or "server"
//	  "scope_id": 42,      // account ID, user scope only
//	  "year": 2025,
//	  "mode": "full",      // optional anonymize mode override
//	  "ttl_hours": 720     // optional lifetime, 0 = configured default
//	}
//
// Response: 201 with the share record and its signed token.
func (h *Handler) ShareCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	mode := models.AnonymizeMode(req.Mode)
	if req.Mode == "" {
		mode = models.AnonymizeMode(h.config.Anonymize.DefaultMode)
	}

	created, token, err := h.shares.Create(r.Context(), share.CreateParams{
		Scope:   models.StatsScope(req.Scope),
		ScopeID: req.ScopeID,
		Year:    req.Year,
		Mode:    mode,
		TTL:     time.Duration(req.TTLHours) * time.Hour,
	})
	if err != nil {
		var yearErr *stats.InvalidYearError
		switch {
		case errors.Is(err, share.ErrInvalidScope), errors.Is(err, share.ErrTTLTooLong), errors.As(err, &yearErr):
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		default:
			logging.Error().Err(err).Str("scope", req.Scope).Int("year", req.Year).Msg("Failed to create share")
			respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create share", err)
		}
		return
	}

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data: ShareCreateResponse{
			Share: created,
			Token: token,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// ShareLookup resolves a share token and returns the report it grants.
//
// Method: GET
// Path: /api/v1/shares/{token}
//
// URL Parameters:
//   - token: The signed share token
//
// The stored share record is re-checked on every access, so revocation
// takes effect even for tokens already in the wild. The report is
// computed fresh (or served from the stats cache) and viewer usernames
// are transformed per the mode stored with the share.
//
// Authentication: Not required (public access via share token)
func (h *Handler) ShareLookup(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "MISSING_TOKEN", "Share token is required", nil)
		return
	}

	sh, err := h.shares.Resolve(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, share.ErrShareExpired):
			respondError(w, http.StatusGone, "SHARE_EXPIRED", "Share link has expired", nil)
		case errors.Is(err, share.ErrShareRevoked):
			respondError(w, http.StatusGone, "SHARE_REVOKED", "Share link has been revoked", nil)
		case errors.Is(err, share.ErrShareNotFound), errors.Is(err, share.ErrTokenInvalid):
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Shared report not found", nil)
		default:
			logging.Error().Err(err).Msg("Failed to resolve share token")
			respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to resolve share", err)
		}
		return
	}

	start := time.Now()
	var report interface{}
	switch sh.Scope {
	case models.ScopeUser:
		report, err = h.engine.CalculateUserStats(r.Context(), sh.ScopeID, sh.Year)
	case models.ScopeServer:
		var serverStats *models.ServerStats
		serverStats, err = h.engine.CalculateServerStats(r.Context(), sh.Year)
		if err == nil && h.anonymizer != nil {
			out := *serverStats
			out.TopViewers = h.anonymizer.ApplyMode(serverStats.TopViewers, sh.Mode, 0)
			serverStats = &out
		}
		report = serverStats
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Share has an unknown scope", nil)
		return
	}
	if err != nil {
		logging.Error().Err(err).Str("share_id", sh.ID).Int("year", sh.Year).Msg("Failed to compute shared report")
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to compute shared report", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: SharedReportResponse{
			Scope:     sh.Scope,
			Year:      sh.Year,
			ExpiresAt: sh.ExpiresAt,
			Report:    report,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// ShareRevoke revokes a share link by ID. Resolving its token fails from
// this point on.
//
// Method: DELETE
// Path: /api/v1/shares/{id}
//
// URL Parameters:
//   - id: The share ID returned at creation
func (h *Handler) ShareRevoke(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "MISSING_ID", "Share ID is required", nil)
		return
	}

	if err := h.shares.Revoke(r.Context(), id); err != nil {
		if errors.Is(err, share.ErrShareNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Share not found", nil)
			return
		}
		logging.Error().Err(err).Str("share_id", sanitizeLogValue(id)).Msg("Failed to revoke share")
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to revoke share", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   map[string]string{"message": "Share revoked"},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
