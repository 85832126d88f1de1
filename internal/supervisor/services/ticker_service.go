// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package services

import (
	"context"
	"time"

	"github.com/tomtom215/standingsync/internal/logging"
)

// Job is one run of a periodic task. The int is the number of units it
// dispatched, for logging.
type Job func(ctx context.Context) (int, error)

// TickerService runs a job immediately and then every interval. A failed
// run is logged and does not stop the ticker.
type TickerService struct {
	name     string
	interval time.Duration
	job      Job
}

// NewTickerService creates a ticker. A non-positive interval means one hour.
func NewTickerService(name string, interval time.Duration, job Job) *TickerService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TickerService{name: name, interval: interval, job: job}
}

// Serve implements suture.Service.
func (s *TickerService) Serve(ctx context.Context) error {
	logger := logging.WithComponent(s.name)
	ctx = logging.ContextWithLogger(ctx, logger)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.runOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *TickerService) runOnce(ctx context.Context) {
	runCtx := logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(runCtx)

	start := time.Now()
	n, err := s.job(runCtx)
	if err != nil {
		log.Warn().Err(err).Str("correlation_id", logging.CorrelationIDFromContext(runCtx)).
			Msg("Periodic job failed")
		return
	}
	log.Info().
		Int("dispatched", n).
		Dur("duration", time.Since(start)).
		Str("correlation_id", logging.CorrelationIDFromContext(runCtx)).
		Msg("Periodic job finished")
}

// String implements fmt.Stringer.
func (s *TickerService) String() string {
	return s.name
}
