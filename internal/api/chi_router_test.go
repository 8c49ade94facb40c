// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package api

import (
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rewound/internal/models"
)

// newTestRouter wires a fresh router so rate limiter state never leaks
// between tests.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	handler := setupTestHandler(t)
	return NewRouter(handler, handler.config).SetupChi()
}

// TestRouter_Routes tests that every route is mounted and answers.
func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(t)

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{
			name:           "Liveness probe",
			method:         http.MethodGet,
			path:           "/api/v1/health/live",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Readiness probe without database",
			method:         http.MethodGet,
			path:           "/api/v1/health/ready",
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "Health report",
			method:         http.MethodGet,
			path:           "/api/v1/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Server report",
			method:         http.MethodGet,
			path:           "/api/v1/rewind/server?year=2025",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "User report",
			method:         http.MethodGet,
			path:           "/api/v1/rewind/users/1?year=2025",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Sync status",
			method:         http.MethodGet,
			path:           "/api/v1/sync/status",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Sync run without ingest service",
			method:         http.MethodPost,
			path:           "/api/v1/sync/run",
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "Unknown route",
			method:         http.MethodGet,
			path:           "/api/v1/unknown",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Wrong method on report route",
			method:         http.MethodDelete,
			path:           "/api/v1/rewind/server",
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "Prometheus metrics",
			method:         http.MethodGet,
			path:           "/metrics",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Status = %d, want %d, body: %s", w.Code, tc.expectedStatus, w.Body.String())
			}
		})
	}
}

// TestRouter_NotFoundEnvelope tests that unmatched routes get the
// standard error envelope.
func TestRouter_NotFoundEnvelope(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusNotFound)
	}

	var resp models.APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
		t.Errorf("Expected error code 'NOT_FOUND', got %+v", resp.Error)
	}
}

// TestRouter_MethodNotAllowedEnvelope tests the 405 envelope.
func TestRouter_MethodNotAllowedEnvelope(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/rewind/server", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}

	var resp models.APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != "METHOD_NOT_ALLOWED" {
		t.Errorf("Expected error code 'METHOD_NOT_ALLOWED', got %+v", resp.Error)
	}
}

// TestRouter_ShareLookupRateLimit tests the sliding-window limiter on
// the public share lookup path.
func TestRouter_ShareLookupRateLimit(t *testing.T) {
	handler := setupTestHandler(t)
	handler.config.Share.RateLimitReqs = 2
	router := NewRouter(handler, handler.config).SetupChi()

	// httptest requests share one source address, so they count against
	// the same window.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/shares/garbage-token", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("Request %d: status = %d, want %d", i+1, w.Code, http.StatusNotFound)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shares/garbage-token", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	var resp models.APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("Expected error code 'RATE_LIMIT_EXCEEDED', got %+v", resp.Error)
	}
}

// TestRouter_CORSPreflight tests OPTIONS preflight handling.
func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/rewind/server", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", origin, "*")
	}
}

// TestRouter_Compression tests gzip encoding for clients that accept it.
func TestRouter_Compression(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	if enc := w.Header().Get("Content-Encoding"); enc != "gzip" {
		t.Fatalf("Content-Encoding = %q, want %q", enc, "gzip")
	}

	gz, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("Failed to create gzip reader: %v", err)
	}
	defer func() {
		_ = gz.Close()
	}()

	var resp models.APIResponse
	if err := json.NewDecoder(gz).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode gzipped response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("Expected status 'success', got %q", resp.Status)
	}
}

// TestRouter_RequestIDHeader tests that responses carry a request ID.
func TestRouter_RequestIDHeader(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if id := w.Header().Get("X-Request-ID"); id == "" {
		t.Error("Expected X-Request-ID header to be set")
	}
}

// TestRouter_MetricsOutput tests that the Prometheus endpoint exposes
// the API gauges.
func TestRouter_MetricsOutput(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "api_active_requests") {
		t.Error("Expected metrics output to contain api_active_requests")
	}
}
