// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// EventType classifies an audit event.
type EventType string

const (
	EventManagerRegistered    EventType = "registration.manager"
	EventCharacterActivated   EventType = "registration.character"
	EventCharacterRemoved     EventType = "registration.removed"
	EventRegistrationRejected EventType = "registration.rejected"
	EventAuthzDenied          EventType = "authz.denied"
	EventSyncTriggered        EventType = "sync.triggered"
)

// Severity is the importance of an event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Outcome is the result of the audited action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is one audited action. ActorID is the acting user, TargetID the
// character or alliance acted upon.
type Event struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	Type          EventType       `json:"type"`
	Severity      Severity        `json:"severity"`
	Outcome       Outcome         `json:"outcome"`
	ActorID       int64           `json:"actor_id,omitempty"`
	TargetID      int64           `json:"target_id,omitempty"`
	TargetKind    string          `json:"target_kind,omitempty"`
	SourceIP      string          `json:"source_ip,omitempty"`
	Action        string          `json:"action"`
	Description   string          `json:"description,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	RequestID     string          `json:"request_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// QueryFilter selects events. Zero fields do not filter. Results are newest
// first.
type QueryFilter struct {
	Types    []EventType
	ActorID  int64
	TargetID int64
	Since    time.Time
	Limit    int
}

func (f QueryFilter) limit() int {
	if f.Limit <= 0 || f.Limit > 1000 {
		return 100
	}
	return f.Limit
}

// Store persists audit events.
type Store interface {
	Save(ctx context.Context, event *Event) error
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}
