// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockGarbageCollector is a test double for the GarbageCollector interface.
type mockGarbageCollector struct {
	gcErr    error
	gcCount  atomic.Int32
	gcCalled chan struct{}
}

func newMockGarbageCollector() *mockGarbageCollector {
	return &mockGarbageCollector{
		gcCalled: make(chan struct{}, 16),
	}
}

func (m *mockGarbageCollector) RunGC() error {
	m.gcCount.Add(1)

	select {
	case m.gcCalled <- struct{}{}:
	default:
	}

	return m.gcErr
}

func (m *mockGarbageCollector) GCCallCount() int {
	return int(m.gcCount.Load())
}

func TestCacheJanitorService_Interface(t *testing.T) {
	// Verify CacheJanitorService implements suture.Service
	var _ suture.Service = (*CacheJanitorService)(nil)
}

func TestNewCacheJanitorService(t *testing.T) {
	gc := newMockGarbageCollector()
	svc := NewCacheJanitorService(gc, time.Minute)

	if svc == nil {
		t.Fatal("NewCacheJanitorService returned nil")
	}
	if svc.gc != gc {
		t.Error("garbage collector not assigned correctly")
	}
	if svc.interval != time.Minute {
		t.Errorf("expected interval 1m, got %v", svc.interval)
	}
	if svc.name != "cache-janitor" {
		t.Errorf("expected name 'cache-janitor', got %q", svc.name)
	}
}

func TestNewCacheJanitorService_DefaultInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
	}{
		{name: "zero interval", interval: 0},
		{name: "negative interval", interval: -time.Minute},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewCacheJanitorService(newMockGarbageCollector(), tc.interval)
			if svc.interval != time.Hour {
				t.Errorf("expected default interval 1h, got %v", svc.interval)
			}
		})
	}
}

func TestCacheJanitorService_Serve(t *testing.T) {
	t.Run("runs GC on each tick", func(t *testing.T) {
		gc := newMockGarbageCollector()
		svc := NewCacheJanitorService(gc, 10*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		// Wait for at least two GC passes
		for i := 0; i < 2; i++ {
			select {
			case <-gc.gcCalled:
			case <-time.After(time.Second):
				t.Fatal("GC was not run")
			}
		}

		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Serve did not return after context cancellation")
		}

		if gc.GCCallCount() < 2 {
			t.Errorf("expected at least 2 GC calls, got %d", gc.GCCallCount())
		}
	})

	t.Run("continues after GC error", func(t *testing.T) {
		gc := newMockGarbageCollector()
		gc.gcErr = errors.New("value log gc failed")
		svc := NewCacheJanitorService(gc, 10*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		// A failing GC must not stop the loop
		for i := 0; i < 2; i++ {
			select {
			case <-gc.gcCalled:
			case <-time.After(time.Second):
				t.Fatal("GC was not retried after error")
			}
		}

		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Serve did not return after context cancellation")
		}
	})

	t.Run("stops before first tick on cancellation", func(t *testing.T) {
		gc := newMockGarbageCollector()
		svc := NewCacheJanitorService(gc, time.Hour)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := svc.Serve(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if gc.GCCallCount() != 0 {
			t.Errorf("expected 0 GC calls, got %d", gc.GCCallCount())
		}
	})
}

func TestCacheJanitorService_String(t *testing.T) {
	svc := NewCacheJanitorService(newMockGarbageCollector(), time.Minute)

	if svc.String() != "cache-janitor" {
		t.Errorf("expected 'cache-janitor', got %q", svc.String())
	}
}

func TestCacheJanitorService_WithSupervisor(t *testing.T) {
	gc := newMockGarbageCollector()
	svc := NewCacheJanitorService(gc, 10*time.Millisecond)

	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := sup.ServeBackground(ctx)

	select {
	case <-gc.gcCalled:
	case <-time.After(time.Second):
		t.Fatal("supervised janitor did not run GC")
	}

	cancel()
	<-errCh
}
