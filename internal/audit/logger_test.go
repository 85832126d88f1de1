// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package audit

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/standingsync/internal/logging"
)

func TestLoggerWritesOnClose(t *testing.T) {
	store := NewMemoryStore(10)
	l := NewLogger(store, Config{BufferSize: 10})

	l.Log(&Event{Type: EventManagerRegistered, Outcome: OutcomeSuccess, ActorID: 7, TargetID: 99000001, Action: "register_manager"})
	l.Log(&Event{Type: EventAuthzDenied, Outcome: OutcomeFailure, ActorID: 8, Action: "activate_character"})
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	events, err := store.Query(context.Background(), QueryFilter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Query() returned %d events, want 2", len(events))
	}
	if events[0].Type != EventAuthzDenied {
		t.Errorf("newest event = %s, want %s", events[0].Type, EventAuthzDenied)
	}
	for _, e := range events {
		if e.ID == "" {
			t.Error("event ID was not assigned")
		}
		if e.Timestamp.IsZero() {
			t.Error("event timestamp was not assigned")
		}
		if e.Severity != SeverityInfo {
			t.Errorf("Severity = %q, want default %q", e.Severity, SeverityInfo)
		}
	}
}

func TestLoggerCloseIsIdempotent(t *testing.T) {
	l := NewLogger(NewMemoryStore(1), DefaultConfig())
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestLoggerCleanup(t *testing.T) {
	store := NewMemoryStore(10)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	_ = store.Save(ctx, &Event{ID: "old", Timestamp: now.AddDate(0, 0, -40)})
	_ = store.Save(ctx, &Event{ID: "new", Timestamp: now.AddDate(0, 0, -5)})

	l := NewLogger(store, Config{RetentionDays: 30})
	defer l.Close()
	l.now = func() time.Time { return now }

	n, err := l.Cleanup(ctx)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Cleanup() = %d, want 1", n)
	}
	events, _ := l.Query(ctx, QueryFilter{})
	if len(events) != 1 || events[0].ID != "new" {
		t.Errorf("remaining events = %+v, want only new", events)
	}
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/v1/characters", nil)
	r.RemoteAddr = "203.0.113.50:41234"
	r = r.WithContext(logging.ContextWithRequestID(r.Context(), "req-1"))

	e := FromRequest(r, EventRegistrationRejected, OutcomeFailure, "activate_character")
	if e.SourceIP != "203.0.113.50" {
		t.Errorf("SourceIP = %q, want 203.0.113.50", e.SourceIP)
	}
	if e.RequestID != "req-1" {
		t.Errorf("RequestID = %q, want req-1", e.RequestID)
	}
	if e.Severity != SeverityWarning {
		t.Errorf("Severity = %q, want warning for a failure", e.Severity)
	}
}

func TestMemoryStoreFilterAndEviction(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10)
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		typ := EventSyncTriggered
		if i%2 == 0 {
			typ = EventCharacterActivated
		}
		_ = store.Save(ctx, &Event{ID: string(rune('a' + i)), Type: typ, ActorID: int64(i % 3), Timestamp: base.Add(time.Duration(i) * time.Minute)})
	}

	all, _ := store.Query(ctx, QueryFilter{Limit: 50})
	if len(all) != 10 {
		t.Fatalf("stored %d events, want 10 after eviction", len(all))
	}

	activated, _ := store.Query(ctx, QueryFilter{Types: []EventType{EventCharacterActivated}})
	for _, e := range activated {
		if e.Type != EventCharacterActivated {
			t.Errorf("type filter returned %s", e.Type)
		}
	}

	recent, _ := store.Query(ctx, QueryFilter{Since: base.Add(10 * time.Minute)})
	if len(recent) != 2 {
		t.Errorf("since filter returned %d events, want 2", len(recent))
	}

	limited, _ := store.Query(ctx, QueryFilter{Limit: 3})
	if len(limited) != 3 || limited[0].ID != "l" {
		t.Errorf("limited query = %+v, want 3 events newest first", limited)
	}
}
