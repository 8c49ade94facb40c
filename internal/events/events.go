// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// SchemaVersion is the current event schema version. Increment on
// breaking changes to event payloads.
const SchemaVersion = 1

// TopicSyncCompleted carries SyncCompletedEvent payloads.
const TopicSyncCompleted = "rewound.sync.completed"

// ErrNATSNotEnabled is returned when NATS features are used without the
// nats build tag.
var ErrNATSNotEnabled = errors.New("NATS event bus not enabled (build with -tags nats)")

// SyncCompletedEvent announces that an ingest pass finished and new play
// history may be visible. Subscribers use it to invalidate cached
// reports.
type SyncCompletedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	Source        string    `json:"source"` // history source, e.g. tautulli
	RecordsAdded  int       `json:"records_added"`
	CompletedAt   time.Time `json:"completed_at"`
}

// NewSyncCompletedEvent creates an event with a unique ID, timestamp,
// and schema version.
func NewSyncCompletedEvent(source string, recordsAdded int) *SyncCompletedEvent {
	return &SyncCompletedEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		Source:        source,
		RecordsAdded:  recordsAdded,
		CompletedAt:   time.Now().UTC(),
	}
}

// Validate checks required fields before publishing.
func (e *SyncCompletedEvent) Validate() error {
	if e.EventID == "" {
		return errors.New("event_id is required")
	}
	if e.Source == "" {
		return errors.New("source is required")
	}
	if e.RecordsAdded < 0 {
		return fmt.Errorf("records_added must be non-negative, got %d", e.RecordsAdded)
	}
	if e.CompletedAt.IsZero() {
		return errors.New("completed_at is required")
	}
	return nil
}

// Marshal converts the event to JSON bytes.
func (e *SyncCompletedEvent) Marshal() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalSyncCompleted converts JSON bytes to an event.
func UnmarshalSyncCompleted(data []byte) (*SyncCompletedEvent, error) {
	var event SyncCompletedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &event, nil
}
