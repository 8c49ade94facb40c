// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

// Package config loads and validates the Rewound configuration.
//
// Configuration is assembled with Koanf v2 from three layers, later layers
// overriding earlier ones:
//
//  1. Built-in defaults (see defaultConfig)
//  2. An optional YAML file (first of config.yaml, config.yml,
//     /etc/rewound/config.yaml, /etc/rewound/config.yml, or the path in
//     REWOUND_CONFIG_PATH / the -config flag)
//  3. REWOUND_* environment variables
//
// Environment variables map to config paths through an explicit table, so
// unrelated variables never leak into the configuration:
//
//	REWOUND_SERVER_PORT=8484
//	REWOUND_DATABASE_PATH=/data/rewound.duckdb
//	REWOUND_TAUTULLI_ENABLED=true
//	REWOUND_TAUTULLI_URL=http://tautulli.local:8181
//	REWOUND_TAUTULLI_API_KEY=xxxx
//	REWOUND_STATS_CACHE_TTL=6h
//	REWOUND_SHARE_SECRET=change-me-32-characters-minimum!
//	REWOUND_ANONYMIZE_SALT=per-server-salt
//	REWOUND_LOG_LEVEL=debug
//
// A minimal YAML file covering the same settings:
//
//	server:
//	  port: 8484
//	tautulli:
//	  enabled: true
//	  url: http://tautulli.local:8181
//	  api_key: xxxx
//	share:
//	  secret: change-me-32-characters-minimum!
//	anonymize:
//	  salt: per-server-salt
//
// Validation runs in two passes: validator/v10 struct tags (ranges, enums,
// required fields) followed by cross-field checks (Tautulli settings only
// required when enabled, TTL ordering, production secret length). Load
// returns an error describing the first problem found; the server refuses
// to start on invalid configuration.
package config
