// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

// Package stats computes annual viewing statistics over play-history
// snapshots.
//
// The package is split into pure calculators (watch time, rankings,
// distributions, percentile, binge detection, first/last watch) and the
// Engine facade that fetches a year-bounded snapshot, fans the calculators
// out concurrently, and assembles UserStats or ServerStats.
//
// Calculators are deterministic and never fail: empty or sparse input is
// normal data and produces the documented zero/empty/nil values. Errors
// only arise from malformed years (before any query) or from the event-log
// collaborator, and those propagate unchanged.
package stats
