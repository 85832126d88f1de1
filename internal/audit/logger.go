// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package audit

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/standingsync/internal/logging"
)

// Config controls the audit logger.
type Config struct {
	// BufferSize is the number of events queued before new ones are dropped.
	BufferSize int

	// RetentionDays is how long Cleanup keeps events.
	RetentionDays int

	// LogToStdout mirrors every event to the application log.
	LogToStdout bool
}

// DefaultConfig returns the default audit configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize:    1000,
		RetentionDays: 90,
		LogToStdout:   true,
	}
}

// Logger writes events to a Store from a background goroutine.
type Logger struct {
	config    Config
	store     Store
	eventChan chan *Event
	stopOnce  sync.Once
	stopChan  chan struct{}
	wg        sync.WaitGroup
	now       func() time.Time
}

// NewLogger starts a logger writing to store.
func NewLogger(store Store, config Config) *Logger {
	defaults := DefaultConfig()
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.RetentionDays <= 0 {
		config.RetentionDays = defaults.RetentionDays
	}

	l := &Logger{
		config:    config,
		store:     store,
		eventChan: make(chan *Event, config.BufferSize),
		stopChan:  make(chan struct{}),
		now:       time.Now,
	}
	l.wg.Add(1)
	go l.asyncWriter()
	return l
}

func (l *Logger) asyncWriter() {
	defer l.wg.Done()
	for {
		select {
		case <-l.stopChan:
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

func (l *Logger) writeEvent(event *Event) {
	if l.config.LogToStdout {
		data, err := json.Marshal(event)
		if err == nil {
			logging.Info().RawJSON("event", data).Msg("Audit event")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to save audit event")
	}
}

// Log queues event. ID and Timestamp are filled in when empty. The event is
// dropped with a warning when the buffer is full.
func (l *Logger) Log(event *Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now().UTC()
	}
	if event.Severity == "" {
		event.Severity = SeverityInfo
	}

	select {
	case <-l.stopChan:
		logging.Warn().Str("event_id", event.ID).Msg("Audit logger closed, dropping event")
	case l.eventChan <- event:
	default:
		logging.Warn().Str("event_id", event.ID).Msg("Audit event buffer full, dropping event")
	}
}

// Query returns stored events matching filter.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return l.store.Query(ctx, filter)
}

// Cleanup deletes events older than the retention period and returns how
// many were removed.
func (l *Logger) Cleanup(ctx context.Context) (int, error) {
	cutoff := l.now().AddDate(0, 0, -l.config.RetentionDays)
	n, err := l.store.Delete(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logging.Ctx(ctx).Info().Int64("count", n).Msg("Cleaned up old audit events")
	}
	return int(n), nil
}

// Close flushes queued events and stops the writer.
func (l *Logger) Close() error {
	l.stopOnce.Do(func() { close(l.stopChan) })
	l.wg.Wait()
	return nil
}

// FromRequest creates an event carrying the source address and the request
// and correlation ids of r.
func FromRequest(r *http.Request, typ EventType, outcome Outcome, action string) *Event {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	severity := SeverityInfo
	if outcome == OutcomeFailure {
		severity = SeverityWarning
	}
	return &Event{
		Type:          typ,
		Severity:      severity,
		Outcome:       outcome,
		SourceIP:      ip,
		Action:        action,
		RequestID:     logging.RequestIDFromContext(r.Context()),
		CorrelationID: logging.CorrelationIDFromContext(r.Context()),
	}
}
