// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package middleware

import (
	"net/http"

	"github.com/go-chi/httprate"

	"github.com/tomtom215/rewound/internal/cache"
	"github.com/tomtom215/rewound/internal/logging"
	"github.com/tomtom215/rewound/internal/metrics"
)

// ShareRateLimit limits share-token lookups per client IP using a
// sliding window. Share URLs circulate publicly, so this endpoint gets a
// tighter budget than the rest of the API to slow token guessing.
//
// Keys come from httprate's IP extraction; mount chi's RealIP middleware
// first when running behind a reverse proxy. onLimit writes the 429
// response so the router controls the error envelope.
func ShareRateLimit(store *cache.RateLimitStore, onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := httprate.KeyByIP(r)
			if err != nil {
				// Unparsable remote address, fall back to the raw value
				// rather than letting the request bypass the limiter.
				key = r.RemoteAddr
			}

			if !store.Allow(key) {
				metrics.APIRateLimitHits.WithLabelValues("shares").Inc()
				logging.Debug().
					Str("client", key).
					Msg("Share lookup rate limited")
				if onLimit != nil {
					onLimit(w, r)
					return
				}
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
