// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

//go:build !nats

package events

import (
	"context"

	"github.com/tomtom215/rewound/internal/config"
)

// NATSBus is a stub for builds without the nats tag.
type NATSBus struct{}

// NewNATSBus returns an error in builds without the nats tag.
func NewNATSBus(_ *config.NATSConfig) (*NATSBus, error) {
	return nil, ErrNATSNotEnabled
}

// PublishSyncCompleted is a no-op stub.
func (b *NATSBus) PublishSyncCompleted(_ *SyncCompletedEvent) error {
	return ErrNATSNotEnabled
}

// SubscribeSyncCompleted is a no-op stub.
func (b *NATSBus) SubscribeSyncCompleted(_ context.Context, _ func(*SyncCompletedEvent)) error {
	return ErrNATSNotEnabled
}

// Close is a no-op stub.
func (b *NATSBus) Close() error {
	return nil
}
