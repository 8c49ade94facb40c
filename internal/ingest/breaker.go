// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/rewound/internal/config"
	"github.com/tomtom215/rewound/internal/logging"
	"github.com/tomtom215/rewound/internal/metrics"
)

// breakerName labels the Tautulli circuit breaker in logs and metrics.
const breakerName = "tautulli-api"

// BreakerClient wraps Client with a circuit breaker so a dead or slow
// Tautulli instance cannot stall every sync run. The breaker uses real
// time for its interval and timeout; tests exercise the wrapped client
// directly or drive the breaker with synthetic failures.
type BreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewBreakerClient creates a Tautulli client with circuit breaker
// protection: max 3 concurrent requests in half-open state, a 1 minute
// measurement window, a 2 minute open period, and a trip threshold of
// 60% failures over at least 10 requests.
func NewBreakerClient(cfg *config.TautulliConfig) *BreakerClient {
	client := NewClient(cfg)

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false // need enough requests for statistical significance
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &BreakerClient{
		client: client,
		cb:     cb,
		name:   breakerName,
	}
}

// execute wraps an API call with circuit breaker protection.
func (b *BreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// Ping verifies Tautulli connectivity through the circuit breaker.
func (b *BreakerClient) Ping(ctx context.Context) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.client.Ping(ctx)
	})
	return err
}

// GetHistoryPage retrieves a history page through the circuit breaker.
func (b *BreakerClient) GetHistoryPage(ctx context.Context, since time.Time, start, length int) (*HistoryPage, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.client.GetHistoryPage(ctx, since, start, length)
	})
	if err != nil {
		return nil, err
	}

	page, ok := result.(*HistoryPage)
	if !ok {
		return nil, fmt.Errorf("unexpected type from circuit breaker: %T", result)
	}
	return page, nil
}

// State returns the current circuit breaker state for health reporting.
func (b *BreakerClient) State() string {
	return stateToString(b.cb.State())
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
