// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package events

import (
	"context"
	"testing"
	"time"
)

// Bus must satisfy the interface cmd/server wires.
var _ SyncBus = (*Bus)(nil)

func TestBus_PublishAndSubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	received := make(chan *SyncCompletedEvent, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bus.SubscribeSyncCompleted(ctx, func(event *SyncCompletedEvent) {
		received <- event
	}); err != nil {
		t.Fatalf("SubscribeSyncCompleted() error = %v", err)
	}

	sent := NewSyncCompletedEvent("tautulli", 33)
	if err := bus.PublishSyncCompleted(sent); err != nil {
		t.Fatalf("PublishSyncCompleted() error = %v", err)
	}

	select {
	case got := <-received:
		if got.EventID != sent.EventID {
			t.Errorf("EventID = %q, want %q", got.EventID, sent.EventID)
		}
		if got.RecordsAdded != 33 {
			t.Errorf("RecordsAdded = %d, want 33", got.RecordsAdded)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not receive the published event")
	}
}

func TestBus_FanOutToMultipleSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := make(chan *SyncCompletedEvent, 1)
	second := make(chan *SyncCompletedEvent, 1)

	if err := bus.SubscribeSyncCompleted(ctx, func(event *SyncCompletedEvent) {
		first <- event
	}); err != nil {
		t.Fatalf("first SubscribeSyncCompleted() error = %v", err)
	}
	if err := bus.SubscribeSyncCompleted(ctx, func(event *SyncCompletedEvent) {
		second <- event
	}); err != nil {
		t.Fatalf("second SubscribeSyncCompleted() error = %v", err)
	}

	if err := bus.PublishSyncCompleted(NewSyncCompletedEvent("tautulli", 5)); err != nil {
		t.Fatalf("PublishSyncCompleted() error = %v", err)
	}

	for name, ch := range map[string]chan *SyncCompletedEvent{"first": first, "second": second} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s subscriber did not receive the event", name)
		}
	}
}

func TestBus_PublishRejectsInvalidEvent(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	err := bus.PublishSyncCompleted(&SyncCompletedEvent{})
	if err == nil {
		t.Error("PublishSyncCompleted() error = nil, want validation error")
	}
}

func TestBus_SequentialEventsArriveInOrder(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan int, 3)
	if err := bus.SubscribeSyncCompleted(ctx, func(event *SyncCompletedEvent) {
		received <- event.RecordsAdded
	}); err != nil {
		t.Fatalf("SubscribeSyncCompleted() error = %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := bus.PublishSyncCompleted(NewSyncCompletedEvent("tautulli", i)); err != nil {
			t.Fatalf("PublishSyncCompleted(%d) error = %v", i, err)
		}
	}

	for want := 1; want <= 3; want++ {
		select {
		case got := <-received:
			if got != want {
				t.Errorf("event %d carried records = %d, want %d", want, got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("event %d never arrived", want)
		}
	}
}
