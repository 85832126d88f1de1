// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package esi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/standingsync/internal/logging"
	"github.com/tomtom215/standingsync/internal/metrics"
)

const breakerName = "esi"

// newBreaker builds the circuit breaker guarding every ESI call.
//
// The circuit opens after threshold consecutive failures and stays open for
// timeout. Only server-side trouble counts as failure.
func newBreaker(threshold uint32, timeout time.Duration) *gobreaker.CircuitBreaker[*response] {
	if threshold == 0 {
		threshold = 5
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				logging.Warn().Uint32("failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening ESI circuit")
			}
			return trip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.RecordCircuitBreakerTransition(name, fromStr, toStr)
		},

		IsSuccessful: isBreakerSuccess,
	})
}

// isBreakerSuccess keeps client errors and cancellations from tripping the
// circuit: a 403 on one character says nothing about ESI's health.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	code := StatusCode(err)
	if code == 0 {
		return false
	}
	if code == 420 || code == http.StatusTooManyRequests {
		return false
	}
	return code < http.StatusInternalServerError
}

// execute runs fn through the breaker and records the outcome.
func (c *Client) execute(fn func() (*response, error)) (*response, error) {
	resp, err := c.breaker.Execute(fn)
	switch {
	case err == nil:
		metrics.RecordCircuitBreakerRequest(breakerName, "success")
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordCircuitBreakerRequest(breakerName, "rejected")
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		metrics.RecordCircuitBreakerRequest(breakerName, "failure")
	}
	return resp, err
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
