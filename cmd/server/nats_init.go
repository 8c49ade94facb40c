// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

//go:build nats

package main

import (
	"fmt"

	"github.com/tomtom215/rewound/internal/config"
	"github.com/tomtom215/rewound/internal/events"
	"github.com/tomtom215/rewound/internal/logging"
)

// newSyncBus returns the NATS-backed event bus when enabled in config,
// or the in-process bus otherwise.
//
// With REWOUND_NATS_EMBEDDED_SERVER=true (the default) the bus starts an
// embedded JetStream server, so a single-binary deployment needs no
// external broker. Multi-instance deployments point REWOUND_NATS_URL at
// a shared server instead, and sync completion events then invalidate
// cached reports on every instance.
func newSyncBus(cfg *config.Config) (events.SyncBus, error) {
	if !cfg.NATS.Enabled {
		return events.NewBus(), nil
	}

	bus, err := events.NewNATSBus(&cfg.NATS)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS event bus: %w", err)
	}

	logging.Info().
		Str("url", cfg.NATS.URL).
		Bool("embedded", cfg.NATS.EmbeddedServer).
		Msg("NATS event bus enabled")
	return bus, nil
}
