// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/rewound/internal/cache"
)

func shareLimitFixture(limit int64) http.Handler {
	store := cache.NewRateLimitStore(cache.RateLimitConfig{
		Window:     time.Minute,
		NumBuckets: 6,
		Limit:      limit,
	})

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return ShareRateLimit(store, nil)(handler)
}

func TestShareRateLimit_AllowsUnderLimit(t *testing.T) {
	wrapped := shareLimitFixture(5)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/shares/abc", nil)
		req.RemoteAddr = "10.1.2.3:5000"
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}
}

func TestShareRateLimit_RejectsOverLimit(t *testing.T) {
	wrapped := shareLimitFixture(3)

	var last int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/shares/abc", nil)
		req.RemoteAddr = "10.1.2.3:5000"
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		last = rec.Code
	}

	if last != http.StatusTooManyRequests {
		t.Errorf("4th request status = %d, want %d", last, http.StatusTooManyRequests)
	}
}

func TestShareRateLimit_KeysByClientIP(t *testing.T) {
	wrapped := shareLimitFixture(1)

	first := httptest.NewRequest(http.MethodGet, "/api/v1/shares/abc", nil)
	first.RemoteAddr = "10.0.0.1:1111"
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("first client status = %d, want %d", rec.Code, http.StatusOK)
	}

	// Same client again is over budget.
	again := httptest.NewRequest(http.MethodGet, "/api/v1/shares/abc", nil)
	again.RemoteAddr = "10.0.0.1:2222"
	rec = httptest.NewRecorder()
	wrapped.ServeHTTP(rec, again)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("repeat client status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}

	// A different client has its own budget.
	other := httptest.NewRequest(http.MethodGet, "/api/v1/shares/abc", nil)
	other.RemoteAddr = "10.0.0.2:3333"
	rec = httptest.NewRecorder()
	wrapped.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestShareRateLimit_CustomLimitHandler(t *testing.T) {
	store := cache.NewRateLimitStore(cache.RateLimitConfig{
		Window:     time.Minute,
		NumBuckets: 6,
		Limit:      1,
	})

	onLimit := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"success":false}`))
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := ShareRateLimit(store, onLimit)(handler)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/shares/abc", nil)
		req.RemoteAddr = "10.9.9.9:4000"
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)

		if i == 1 {
			if rec.Code != http.StatusTooManyRequests {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
			}
			if rec.Body.String() != `{"success":false}` {
				t.Errorf("body = %q, want custom limit payload", rec.Body.String())
			}
		}
	}
}
