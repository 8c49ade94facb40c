// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

/*
Package cache provides the persisted report cache and the in-memory rate
limiter backing the public share endpoints.

# Stats Cache

StatsCache stores serialized annual reports in BadgerDB, keyed by
(scope, scopeID, year). Entries carry their own computed-at timestamp and
TTL and expire lazily: a read past the TTL reports a miss so the caller
recomputes and overwrites. The Badger entry TTL runs at twice the logical
TTL purely as storage hygiene.

Entries are never partially updated. A Set replaces the whole envelope, so
readers observe either the previous complete report or the new one.

InvalidateAll drops the stats namespace wholesale; a sync-completion
subscriber calls it whenever a run lands new records, since fresh history
can change any report.

# Rate Limiting

RateLimitStore tracks per-client request counts over a sliding window
divided into circular buckets, giving O(buckets) memory per key. It is an
explicit store with injected configuration rather than a process-global,
so endpoint groups get isolated limiters and tests get deterministic
clocks.
*/
package cache
