// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/standingsync/internal/database/query"
)

// DuckDBStore persists events in the audit_events table.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore creates a store on db. Call CreateTable before use.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// CreateTable creates the audit_events table and its indexes.
func (s *DuckDBStore) CreateTable(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS audit_events (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			outcome TEXT NOT NULL,
			actor_id BIGINT,
			target_id BIGINT,
			target_kind TEXT,
			source_ip TEXT,
			action TEXT NOT NULL,
			description TEXT,
			metadata TEXT,
			request_id TEXT,
			correlation_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_actor ON audit_events(actor_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create audit table: %w", err)
		}
	}
	return nil
}

// Save inserts event.
func (s *DuckDBStore) Save(ctx context.Context, event *Event) error {
	var metadata any
	if len(event.Metadata) > 0 {
		metadata = string(event.Metadata)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			id, timestamp, type, severity, outcome, actor_id, target_id, target_kind,
			source_ip, action, description, metadata, request_id, correlation_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Timestamp, string(event.Type), string(event.Severity), string(event.Outcome),
		nullInt(event.ActorID), nullInt(event.TargetID), nullString(event.TargetKind),
		nullString(event.SourceIP), event.Action, nullString(event.Description), metadata,
		nullString(event.RequestID), nullString(event.CorrelationID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// Query returns matching events, newest first.
func (s *DuckDBStore) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	wb := query.NewWhereBuilder().
		AddEqual("actor_id", filter.ActorID).
		AddEqual("target_id", filter.TargetID)
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		args := make([]interface{}, len(filter.Types))
		for i, t := range filter.Types {
			placeholders[i] = "?"
			args[i] = string(t)
		}
		wb.AddClause("type IN ("+strings.Join(placeholders, ", ")+")", args...)
	}
	if !filter.Since.IsZero() {
		wb.AddClause("timestamp >= ?", filter.Since)
	}
	where, args := wb.BuildWithPrefix()
	args = append(args, filter.limit())

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, type, severity, outcome, actor_id, target_id, target_kind,
		       source_ip, action, description, metadata, request_id, correlation_id
		FROM audit_events `+where+`
		ORDER BY timestamp DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e                                  Event
			typ, severity, outcome             string
			actorID, targetID                  sql.NullInt64
			targetKind, sourceIP, description  sql.NullString
			metadata, requestID, correlationID sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &typ, &severity, &outcome, &actorID, &targetID,
			&targetKind, &sourceIP, &e.Action, &description, &metadata, &requestID, &correlationID); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.Type, e.Severity, e.Outcome = EventType(typ), Severity(severity), Outcome(outcome)
		e.ActorID, e.TargetID = actorID.Int64, targetID.Int64
		e.TargetKind, e.SourceIP, e.Description = targetKind.String, sourceIP.String, description.String
		e.RequestID, e.CorrelationID = requestID.String, correlationID.String
		if metadata.Valid && metadata.String != "" {
			e.Metadata = json.RawMessage(metadata.String)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}
	return events, nil
}

// Delete removes events older than olderThan.
func (s *DuckDBStore) Delete(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM audit_events WHERE timestamp < ?`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit events: %w", err)
	}
	return result.RowsAffected()
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
