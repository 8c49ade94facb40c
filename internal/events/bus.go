// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/rewound/internal/logging"
)

// SyncBus is the surface the server wires up: ingest publishes on sync
// completion, the cache layer subscribes for invalidation. Implemented
// by Bus in-process and by NATSBus in builds with the nats tag.
type SyncBus interface {
	PublishSyncCompleted(event *SyncCompletedEvent) error
	SubscribeSyncCompleted(ctx context.Context, fn func(*SyncCompletedEvent)) error
	Close() error
}

// Bus is the in-process event bus. Publishers and subscribers in the
// same process exchange messages over buffered Go channels; builds with
// the nats tag can swap in the NATS-backed bus for multi-process
// deployments.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates an in-process bus. Messages published with no active
// subscriber are dropped, which is the desired behavior for cache
// invalidation signals.
func NewBus() *Bus {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 64,
		},
		newWatermillLogger(),
	)
	return &Bus{pubsub: pubsub}
}

// PublishSyncCompleted validates and publishes a sync completion event.
func (b *Bus) PublishSyncCompleted(event *SyncCompletedEvent) error {
	payload, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode sync event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(TopicSyncCompleted, msg); err != nil {
		return fmt.Errorf("failed to publish sync event: %w", err)
	}

	logging.Debug().
		Str("event_id", event.EventID).
		Int("records_added", event.RecordsAdded).
		Msg("Published sync completion event")
	return nil
}

// SubscribeSyncCompleted delivers decoded sync completion events to fn
// on a background goroutine until ctx is canceled or the bus closes.
// Undecodable payloads are acked and dropped so they cannot wedge the
// subscription.
func (b *Bus) SubscribeSyncCompleted(ctx context.Context, fn func(*SyncCompletedEvent)) error {
	messages, err := b.pubsub.Subscribe(ctx, TopicSyncCompleted)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", TopicSyncCompleted, err)
	}

	go func() {
		for msg := range messages {
			event, err := UnmarshalSyncCompleted(msg.Payload)
			if err != nil {
				logging.Warn().
					Err(err).
					Str("message_uuid", msg.UUID).
					Msg("Dropping undecodable sync event")
				msg.Ack()
				continue
			}
			fn(event)
			msg.Ack()
		}
	}()
	return nil
}

// Close shuts the bus down and ends all subscriptions.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
