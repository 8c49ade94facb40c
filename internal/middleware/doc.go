// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

// Package middleware provides chi-compatible HTTP middleware: request ID
// propagation, Prometheus instrumentation, gzip compression, and the
// share-lookup rate limiter. CORS and global rate limiting come from the
// chi ecosystem (go-chi/cors, go-chi/httprate) and are wired directly in
// the router.
package middleware
