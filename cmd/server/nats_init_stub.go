// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

//go:build !nats

package main

import (
	"github.com/tomtom215/rewound/internal/config"
	"github.com/tomtom215/rewound/internal/events"
	"github.com/tomtom215/rewound/internal/logging"
)

// newSyncBus returns the in-process event bus for non-NATS builds.
//
// This allows main to call newSyncBus unconditionally without build tag
// conditionals. If NATS is enabled in config but not compiled in, the
// server still runs with the in-process bus and logs a warning.
func newSyncBus(cfg *config.Config) (events.SyncBus, error) {
	if cfg.NATS.Enabled {
		logging.Warn().Msg("REWOUND_NATS_ENABLED=true but NATS support not compiled (build with -tags nats)")
	}
	return events.NewBus(), nil
}
