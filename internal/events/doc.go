// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

/*
Package events carries sync completion signals between ingest and the
cache layer.

When a sync pass lands new play history, computed year-in-review reports
may be stale. The ingest service publishes a SyncCompletedEvent and a
subscriber drops the cached reports so the next request recomputes
against fresh data.

Two bus implementations share the SyncBus interface:

  - Bus: in-process pub/sub over buffered Go channels (Watermill
    gochannel). The default, sufficient for single-instance deployments.
  - NATSBus: JetStream-backed bus for multi-process deployments, with an
    optional embedded NATS server. Requires the nats build tag; the
    default build ships a stub whose constructor returns
    ErrNATSNotEnabled.

Events are versioned JSON payloads. Subscribers ack and drop payloads
they cannot decode rather than blocking the subscription on redelivery.
*/
package events
