// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package lastfm

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mcroft/vitrine/internal/config"
	"github.com/mcroft/vitrine/internal/logging"
	"github.com/mcroft/vitrine/internal/metrics"
	lfm "github.com/mcroft/vitrine/internal/models/lastfm"
)

// CircuitBreakerClient wraps Client with a circuit breaker so a slow or
// failing upstream cannot stall every aggregation request. The breaker
// uses real time for its interval and timeout; tests exercise the
// wrapped client directly.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient creates a client with circuit breaker
// protection. The circuit opens after a 60% failure rate over at least
// 10 requests, and recovers through a half-open state after 2 minutes.
func NewCircuitBreakerClient(cfg *config.LastfmConfig) *CircuitBreakerClient {
	client := NewClient(cfg)
	cbName := "lastfm-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening lastfm circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("Lastfm circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// GetTopAlbums implements ClientInterface.
func (cbc *CircuitBreakerClient) GetTopAlbums(ctx context.Context, limit int) (*lfm.TopAlbumsResponse, error) {
	return castResult[lfm.TopAlbumsResponse](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetTopAlbums(ctx, limit)
	}))
}

// GetWeeklyAlbumChart implements ClientInterface.
func (cbc *CircuitBreakerClient) GetWeeklyAlbumChart(ctx context.Context, from, to int64) (*lfm.WeeklyAlbumChartResponse, error) {
	return castResult[lfm.WeeklyAlbumChartResponse](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetWeeklyAlbumChart(ctx, from, to)
	}))
}

// GetAlbumInfo implements ClientInterface.
func (cbc *CircuitBreakerClient) GetAlbumInfo(ctx context.Context, artist, album string) (*lfm.AlbumInfo, error) {
	return castResult[lfm.AlbumInfo](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetAlbumInfo(ctx, artist, album)
	}))
}

// execute wraps a call with breaker protection and records metrics.
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("Lastfm request rejected by circuit breaker")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	return result, nil
}

// castResult type-casts a circuit breaker result.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
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
