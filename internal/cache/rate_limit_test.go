// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// TestRateLimitStore_AllowWithinLimit tests the basic allow path
func TestRateLimitStore_AllowWithinLimit(t *testing.T) {
	store := NewRateLimitStore(RateLimitConfig{
		Window:     time.Minute,
		NumBuckets: 6,
		Limit:      5,
	})

	for i := 0; i < 5; i++ {
		if !store.Allow("client-a") {
			t.Fatalf("expected request %d to be allowed", i+1)
		}
	}
	if store.Allow("client-a") {
		t.Error("expected request 6 to be rejected")
	}
}

// TestRateLimitStore_KeysAreIsolated verifies per-key accounting
func TestRateLimitStore_KeysAreIsolated(t *testing.T) {
	store := NewRateLimitStore(RateLimitConfig{
		Window:     time.Minute,
		NumBuckets: 6,
		Limit:      2,
	})

	store.Allow("client-a")
	store.Allow("client-a")
	if store.Allow("client-a") {
		t.Error("expected client-a to be limited")
	}

	if !store.Allow("client-b") {
		t.Error("expected client-b to be unaffected by client-a's usage")
	}
}

// TestRateLimitStore_WindowSlides tests that old requests age out
func TestRateLimitStore_WindowSlides(t *testing.T) {
	store := NewRateLimitStore(RateLimitConfig{
		Window:     time.Minute,
		NumBuckets: 6,
		Limit:      3,
	})

	base := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		if !store.Allow("client-a") {
			t.Fatalf("expected request %d allowed", i+1)
		}
	}
	if store.Allow("client-a") {
		t.Error("expected rejection at the limit")
	}

	// A full window later every bucket has rotated out.
	store.now = func() time.Time { return base.Add(time.Minute + time.Second) }
	if !store.Allow("client-a") {
		t.Error("expected allowance after the window slid past")
	}
}

// TestRateLimitStore_PartialSlide verifies only elapsed buckets clear
func TestRateLimitStore_PartialSlide(t *testing.T) {
	store := NewRateLimitStore(RateLimitConfig{
		Window:     time.Minute,
		NumBuckets: 6, // 10-second buckets
		Limit:      3,
	})

	base := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	store.Allow("client-a")
	store.Allow("client-a")
	store.Allow("client-a")

	// Half a window later the early requests still count.
	store.now = func() time.Time { return base.Add(30 * time.Second) }
	if store.Allow("client-a") {
		t.Error("expected rejection while requests remain in the window")
	}
}

// TestRateLimitStore_Remaining tests the remaining-quota report
func TestRateLimitStore_Remaining(t *testing.T) {
	store := NewRateLimitStore(RateLimitConfig{
		Window:     time.Minute,
		NumBuckets: 6,
		Limit:      5,
	})

	if got := store.Remaining("client-a"); got != 5 {
		t.Errorf("expected 5 remaining for fresh key, got %d", got)
	}

	store.Allow("client-a")
	store.Allow("client-a")
	if got := store.Remaining("client-a"); got != 3 {
		t.Errorf("expected 3 remaining, got %d", got)
	}

	// Saturate past the limit; remaining clamps at zero.
	for i := 0; i < 10; i++ {
		store.Allow("client-a")
	}
	if got := store.Remaining("client-a"); got != 0 {
		t.Errorf("expected 0 remaining, got %d", got)
	}
}

// TestRateLimitStore_MaxEntriesEviction tests capacity bounding
func TestRateLimitStore_MaxEntriesEviction(t *testing.T) {
	store := NewRateLimitStore(RateLimitConfig{
		Window:     time.Minute,
		NumBuckets: 6,
		Limit:      10,
		MaxEntries: 3,
	})

	base := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	store.Allow("a")
	store.now = func() time.Time { return base.Add(time.Second) }
	store.Allow("b")
	store.now = func() time.Time { return base.Add(2 * time.Second) }
	store.Allow("c")

	if got := store.Len(); got != 3 {
		t.Fatalf("expected 3 tracked keys, got %d", got)
	}

	// A fourth key evicts the least recently used one.
	store.now = func() time.Time { return base.Add(3 * time.Second) }
	store.Allow("d")
	if got := store.Len(); got > 3 {
		t.Errorf("expected at most 3 tracked keys, got %d", got)
	}
}

// TestRateLimitStore_ConfigDefaults tests fallback configuration
func TestRateLimitStore_ConfigDefaults(t *testing.T) {
	store := NewRateLimitStore(RateLimitConfig{})
	def := DefaultRateLimitConfig()

	if store.cfg.Window != def.Window {
		t.Errorf("expected window %v, got %v", def.Window, store.cfg.Window)
	}
	if store.cfg.Limit != def.Limit {
		t.Errorf("expected limit %d, got %d", def.Limit, store.cfg.Limit)
	}
	if store.cfg.NumBuckets != def.NumBuckets {
		t.Errorf("expected %d buckets, got %d", def.NumBuckets, store.cfg.NumBuckets)
	}
}

// TestRateLimitStore_ConcurrentClients verifies thread safety under load
func TestRateLimitStore_ConcurrentClients(t *testing.T) {
	store := NewRateLimitStore(RateLimitConfig{
		Window:     time.Minute,
		NumBuckets: 6,
		Limit:      1000,
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("client-%d", id)
			for j := 0; j < 100; j++ {
				store.Allow(key)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		key := fmt.Sprintf("client-%d", i)
		if got := store.Remaining(key); got != 900 {
			t.Errorf("expected 900 remaining for %s, got %d", key, got)
		}
	}
}
