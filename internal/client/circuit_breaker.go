// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package client

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/gaquery/internal/config"
	"github.com/tomtom215/gaquery/internal/logging"
	"github.com/tomtom215/gaquery/internal/metrics"
	"github.com/tomtom215/gaquery/internal/models/reporting"
	"github.com/tomtom215/gaquery/internal/query"
)

// breakerName labels the reporting API breaker in logs and metrics.
const breakerName = "reporting-api"

// CircuitBreakerClient wraps Client with a circuit breaker so a failing
// API is not hammered page after page.
//
// The breaker uses real time (via sony/gobreaker) for its interval and
// timeout. Tests drive it through execute with synthetic failures.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient creates a reporting client protected by a breaker
// configured from cbCfg. The breaker opens once at least MinRequests
// requests were seen in the interval and the failure ratio reaches
// FailureRatio.
func NewCircuitBreakerClient(cfg *config.ReportingConfig, cbCfg *config.CircuitBreakerConfig) *CircuitBreakerClient {
	return wrapClient(NewClient(cfg), cbCfg)
}

func wrapClient(client *Client, cbCfg *config.CircuitBreakerConfig) *CircuitBreakerClient {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	minRequests := cbCfg.MinRequests
	failureRatio := cbCfg.FailureRatio

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cbCfg.MaxRequests,
		Interval:    cbCfg.Interval,
		Timeout:     cbCfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}

			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := ratio >= failureRatio

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		IsSuccessful: isBreakerSuccess,

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   breakerName,
	}
}

// isBreakerSuccess keeps rejected queries and caller cancellations from
// counting against the API's health.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.ClientError() {
		return true
	}
	return false
}

// execute wraps an API call with circuit breaker protection.
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)

	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		case isBreakerSuccess(err):
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
		default:
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
			counts := cbc.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)

	return result, nil
}

// castResult type-casts the circuit breaker result.
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

// stateToFloat converts circuit breaker state to numeric value for metrics
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

// stateToString converts circuit breaker state to string for logging
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

// State returns the current breaker state.
func (cbc *CircuitBreakerClient) State() gobreaker.State {
	return cbc.cb.State()
}

// Fetch retrieves one report page with circuit breaker protection.
func (cbc *CircuitBreakerClient) Fetch(ctx context.Context, q query.Normalized) (*reporting.Response, error) {
	return castResult[reporting.Response](cbc.execute(func() (interface{}, error) {
		return cbc.client.Fetch(ctx, q)
	}))
}

// FetchRaw retrieves one undecoded report page with circuit breaker protection.
func (cbc *CircuitBreakerClient) FetchRaw(ctx context.Context, q query.Normalized) ([]byte, error) {
	result, err := cbc.execute(func() (interface{}, error) {
		return cbc.client.FetchRaw(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return body, nil
}

// BatchGet posts a reports:batchGet request with circuit breaker protection.
func (cbc *CircuitBreakerClient) BatchGet(ctx context.Context, request any) (*reporting.BatchResponse, error) {
	return castResult[reporting.BatchResponse](cbc.execute(func() (interface{}, error) {
		return cbc.client.BatchGet(ctx, request)
	}))
}
