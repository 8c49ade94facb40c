// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rewound/internal/models"
)

// ===================================================================================================
// sanitizeLogValue Tests
// ===================================================================================================

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "clean string passes through",
			input:    "alice watched Heat",
			expected: "alice watched Heat",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "newline escaped",
			input:    "line1\nline2",
			expected: `line1\x0aline2`,
		},
		{
			name:     "carriage return escaped",
			input:    "a\rb",
			expected: `a\x0db`,
		},
		{
			name:     "tab escaped",
			input:    "a\tb",
			expected: `a\x09b`,
		},
		{
			name:     "delete character escaped",
			input:    "a\x7fb",
			expected: `a\x7fb`,
		},
		{
			name:     "forged log entry neutralized",
			input:    "token\n2026-01-01 ERROR fake entry",
			expected: `token\x0a2026-01-01 ERROR fake entry`,
		},
		{
			name:     "unicode preserved",
			input:    "café",
			expected: "café",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeLogValue(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeLogValue(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

// ===================================================================================================
// generateETag Tests
// ===================================================================================================

func TestGenerateETag(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{
			name:  "empty data",
			input: []byte{},
		},
		{
			name:  "json data",
			input: []byte(`{"status": "success", "data": {"year": 2025}}`),
		},
		{
			name:  "binary data",
			input: []byte{0x00, 0xFF, 0x55, 0xAA},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			etag := generateETag(tt.input)

			if etag == "" {
				t.Error("generateETag() returned empty string")
			}

			etag2 := generateETag(tt.input)
			if etag != etag2 {
				t.Errorf("generateETag() is not deterministic: %s != %s", etag, etag2)
			}
		})
	}

	t.Run("different inputs produce different ETags", func(t *testing.T) {
		etag1 := generateETag([]byte(`{"year": 2024}`))
		etag2 := generateETag([]byte(`{"year": 2025}`))
		if etag1 == etag2 {
			t.Error("Different inputs produced the same ETag")
		}
	})
}

// ===================================================================================================
// respondJSON Tests
// ===================================================================================================

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		response       *models.APIResponse
		expectedStatus int
	}{
		{
			name:   "success response",
			status: http.StatusOK,
			response: &models.APIResponse{
				Status: "success",
				Data:   map[string]string{"message": "ok"},
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "error response",
			status: http.StatusBadRequest,
			response: &models.APIResponse{
				Status: "error",
				Error:  &models.APIError{Code: "TEST_ERROR", Message: "test message"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "accepted response",
			status: http.StatusAccepted,
			response: &models.APIResponse{
				Status: "success",
				Data:   map[string]string{"message": "Sync triggered"},
			},
			expectedStatus: http.StatusAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respondJSON(w, tt.status, tt.response)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got %q", ct)
			}
			if cc := w.Header().Get("Cache-Control"); cc == "" {
				t.Error("Expected Cache-Control header to be set")
			}
			if etag := w.Header().Get("ETag"); etag == "" {
				t.Error("Expected ETag header to be set")
			}

			var decoded models.APIResponse
			if err := json.NewDecoder(w.Body).Decode(&decoded); err != nil {
				t.Errorf("Failed to decode response body: %v", err)
			}

			if decoded.Status != tt.response.Status {
				t.Errorf("Expected status %q, got %q", tt.response.Status, decoded.Status)
			}
		})
	}
}

// ===================================================================================================
// respondError Tests
// ===================================================================================================

func TestRespondError(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		code           string
		message        string
		expectedStatus int
	}{
		{
			name:           "validation error",
			status:         http.StatusBadRequest,
			code:           "VALIDATION_ERROR",
			message:        "Invalid input",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "database error",
			status:         http.StatusInternalServerError,
			code:           "DATABASE_ERROR",
			message:        "Failed to calculate statistics",
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "share expired",
			status:         http.StatusGone,
			code:           "SHARE_EXPIRED",
			message:        "Share link has expired",
			expectedStatus: http.StatusGone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respondError(w, tt.status, tt.code, tt.message, nil)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var decoded models.APIResponse
			if err := json.NewDecoder(w.Body).Decode(&decoded); err != nil {
				t.Errorf("Failed to decode response body: %v", err)
			}

			if decoded.Status != "error" {
				t.Errorf("Expected status 'error', got %q", decoded.Status)
			}

			if decoded.Error == nil {
				t.Error("Expected error field to be set")
			} else {
				if decoded.Error.Code != tt.code {
					t.Errorf("Expected error code %q, got %q", tt.code, decoded.Error.Code)
				}
				if decoded.Error.Message != tt.message {
					t.Errorf("Expected error message %q, got %q", tt.message, decoded.Error.Message)
				}
			}
		})
	}
}

// ===================================================================================================
// parseYearParam Tests
// ===================================================================================================

func TestParseYearParam(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		expected  int
		expectErr bool
	}{
		{
			name:      "valid year",
			query:     "year=2025",
			expected:  2025,
			expectErr: false,
		},
		{
			name:      "lower bound",
			query:     "year=2000",
			expected:  2000,
			expectErr: false,
		},
		{
			name:      "upper bound",
			query:     "year=2100",
			expected:  2100,
			expectErr: false,
		},
		{
			name:      "missing year",
			query:     "",
			expectErr: true,
		},
		{
			name:      "non-numeric year",
			query:     "year=abc",
			expectErr: true,
		},
		{
			name:      "year below range",
			query:     "year=1999",
			expectErr: true,
		},
		{
			name:      "year above range",
			query:     "year=2101",
			expectErr: true,
		},
		{
			name:      "negative year",
			query:     "year=-5",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/rewind/server"
			if tt.query != "" {
				url += "?" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)

			year, err := parseYearParam(req)

			if tt.expectErr {
				if err == nil {
					t.Errorf("parseYearParam(%q) succeeded, expected error", tt.query)
				}
				return
			}

			if err != nil {
				t.Errorf("parseYearParam(%q) failed: %v", tt.query, err)
			}
			if year != tt.expected {
				t.Errorf("parseYearParam(%q) = %d, expected %d", tt.query, year, tt.expected)
			}
		})
	}
}
