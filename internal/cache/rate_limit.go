// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package cache

import (
	"sync"
	"time"
)

// RateLimitConfig configures a RateLimitStore. All fields are injected so
// multiple isolated stores can coexist, e.g. one per endpoint group.
type RateLimitConfig struct {
	// Window is the sliding window duration.
	Window time.Duration

	// NumBuckets divides the window for counting granularity.
	NumBuckets int

	// Limit is the maximum number of allowed requests per key per window.
	Limit int64

	// MaxEntries bounds the number of tracked keys; 0 means unlimited.
	MaxEntries int
}

// DefaultRateLimitConfig returns the limiter defaults for public share
// endpoints.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Window:     time.Minute,
		NumBuckets: 12,
		Limit:      30,
		MaxEntries: 10000,
	}
}

// RateLimitStore tracks request counts per client key over a sliding
// window. The window is divided into circular buckets so memory per key
// stays constant regardless of request volume.
type RateLimitStore struct {
	mu       sync.Mutex
	cfg      RateLimitConfig
	counters map[string]*windowCounter
	now      func() time.Time
}

// windowCounter is one key's circular bucket buffer.
type windowCounter struct {
	buckets    []int64
	bucketSize time.Duration
	numBuckets int
	current    int
	lastUpdate time.Time
}

// NewRateLimitStore creates a rate-limit store with the given configuration.
// Zero or negative config fields fall back to defaults.
func NewRateLimitStore(cfg RateLimitConfig) *RateLimitStore {
	def := DefaultRateLimitConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.NumBuckets <= 0 {
		cfg.NumBuckets = def.NumBuckets
	}
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.MaxEntries < 0 {
		cfg.MaxEntries = 0
	}

	return &RateLimitStore{
		cfg:      cfg,
		counters: make(map[string]*windowCounter),
		now:      time.Now,
	}
}

// Allow records one request for the key and reports whether it fits inside
// the limit. The request is counted even when rejected, so a client
// hammering the endpoint keeps its window saturated.
func (s *RateLimitStore) Allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	counter := s.counter(key, now)
	counter.advance(now, s.cfg.Window/time.Duration(s.cfg.NumBuckets))
	counter.buckets[counter.current]++

	return counter.total() <= s.cfg.Limit
}

// Remaining returns how many requests the key has left in the current
// window, never below zero.
func (s *RateLimitStore) Remaining(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	counter, ok := s.counters[key]
	if !ok {
		return s.cfg.Limit
	}
	counter.advance(s.now(), s.cfg.Window/time.Duration(s.cfg.NumBuckets))

	remaining := s.cfg.Limit - counter.total()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Len returns the number of tracked keys.
func (s *RateLimitStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}

// counter returns the key's counter, creating it and evicting idle entries
// when the store is at capacity. Must be called with the lock held.
func (s *RateLimitStore) counter(key string, now time.Time) *windowCounter {
	if counter, ok := s.counters[key]; ok {
		return counter
	}

	if s.cfg.MaxEntries > 0 && len(s.counters) >= s.cfg.MaxEntries {
		s.evict(now)
	}

	counter := &windowCounter{
		buckets:    make([]int64, s.cfg.NumBuckets),
		numBuckets: s.cfg.NumBuckets,
		lastUpdate: now,
	}
	s.counters[key] = counter
	return counter
}

// evict drops keys idle for a full window; if none qualify, it drops the
// least recently updated key. Must be called with the lock held.
func (s *RateLimitStore) evict(now time.Time) {
	var oldestKey string
	var oldestUpdate time.Time

	for key, counter := range s.counters {
		if now.Sub(counter.lastUpdate) >= s.cfg.Window {
			delete(s.counters, key)
			continue
		}
		if oldestKey == "" || counter.lastUpdate.Before(oldestUpdate) {
			oldestKey = key
			oldestUpdate = counter.lastUpdate
		}
	}

	if len(s.counters) >= s.cfg.MaxEntries && oldestKey != "" {
		delete(s.counters, oldestKey)
	}
}

// advance rotates the circular buffer forward, clearing buckets that have
// fallen out of the window.
func (w *windowCounter) advance(now time.Time, bucketSize time.Duration) {
	if bucketSize <= 0 {
		return
	}

	elapsed := int(now.Sub(w.lastUpdate) / bucketSize)
	if elapsed <= 0 {
		return
	}

	if elapsed >= w.numBuckets {
		for i := range w.buckets {
			w.buckets[i] = 0
		}
		w.current = 0
	} else {
		for i := 0; i < elapsed; i++ {
			w.current = (w.current + 1) % w.numBuckets
			w.buckets[w.current] = 0
		}
	}

	w.lastUpdate = now
}

// total sums the live buckets.
func (w *windowCounter) total() int64 {
	var sum int64
	for _, count := range w.buckets {
		sum += count
	}
	return sum
}
