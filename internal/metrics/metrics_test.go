// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordManagerSync(t *testing.T) {
	before := testutil.ToFloat64(ManagerSyncs.WithLabelValues("changed"))
	RecordManagerSync("changed", 120*time.Millisecond)
	after := testutil.ToFloat64(ManagerSyncs.WithLabelValues("changed"))

	if after-before != 1 {
		t.Errorf("manager sync counter delta = %v, want 1", after-before)
	}
}

func TestRecordCharacterSync(t *testing.T) {
	before := testutil.ToFloat64(CharacterSyncs.WithLabelValues("synced"))
	RecordCharacterSync("synced", time.Second)
	RecordCharacterSync("synced", 2*time.Second)
	after := testutil.ToFloat64(CharacterSyncs.WithLabelValues("synced"))

	if after-before != 2 {
		t.Errorf("character sync counter delta = %v, want 2", after-before)
	}
}

func TestRecordContactsWritten(t *testing.T) {
	before := testutil.ToFloat64(ContactsWritten.WithLabelValues("add"))
	RecordContactsWritten("add", 150)
	RecordContactsWritten("add", 0)
	after := testutil.ToFloat64(ContactsWritten.WithLabelValues("add"))

	if after-before != 150 {
		t.Errorf("contacts written delta = %v, want 150", after-before)
	}
}

func TestSetManagerContacts(t *testing.T) {
	SetManagerContacts(99000001, 42)
	if got := testutil.ToFloat64(ManagerContacts.WithLabelValues("99000001")); got != 42 {
		t.Errorf("manager contacts gauge = %v, want 42", got)
	}
}

func TestRecordESIRequest(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantLabel   string
		rateLimited bool
	}{
		{"ok", 200, "200", false},
		{"error limited", 420, "420", true},
		{"too many requests", 429, "429", true},
		{"transport failure", 0, "error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(ESIRequestsTotal.WithLabelValues("contacts", tt.wantLabel))
			limitedBefore := testutil.ToFloat64(ESIRateLimited)

			RecordESIRequest("contacts", tt.status, 10*time.Millisecond)

			if d := testutil.ToFloat64(ESIRequestsTotal.WithLabelValues("contacts", tt.wantLabel)) - before; d != 1 {
				t.Errorf("request counter delta = %v, want 1", d)
			}
			limitedDelta := testutil.ToFloat64(ESIRateLimited) - limitedBefore
			if tt.rateLimited && limitedDelta != 1 {
				t.Errorf("rate limited delta = %v, want 1", limitedDelta)
			}
			if !tt.rateLimited && limitedDelta != 0 {
				t.Errorf("rate limited delta = %v, want 0", limitedDelta)
			}
		})
	}
}

func TestRecordESICache(t *testing.T) {
	hits := testutil.ToFloat64(ESICacheHits)
	misses := testutil.ToFloat64(ESICacheMisses)

	RecordESICache(true)
	RecordESICache(false)
	RecordESICache(false)

	if d := testutil.ToFloat64(ESICacheHits) - hits; d != 1 {
		t.Errorf("cache hits delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(ESICacheMisses) - misses; d != 2 {
		t.Errorf("cache misses delta = %v, want 2", d)
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	RecordCircuitBreakerTransition("esi", "closed", "open")
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("esi")); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}
	RecordCircuitBreakerTransition("esi", "open", "half-open")
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("esi")); got != 1 {
		t.Errorf("breaker state = %v, want 1", got)
	}
}

func TestRecordTaskHandled(t *testing.T) {
	okBefore := testutil.ToFloat64(TasksHandled.WithLabelValues("t", "ok"))
	errBefore := testutil.ToFloat64(TasksHandled.WithLabelValues("t", "error"))

	RecordTaskHandled("t", nil)
	RecordTaskHandled("t", errors.New("boom"))

	if d := testutil.ToFloat64(TasksHandled.WithLabelValues("t", "ok")) - okBefore; d != 1 {
		t.Errorf("ok delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(TasksHandled.WithLabelValues("t", "error")) - errBefore; d != 1 {
		t.Errorf("error delta = %v, want 1", d)
	}
}

// TestMetricGathering checks the registered collectors lint cleanly.
func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/healthz", "200", time.Millisecond)
	RecordTaskPublished("standingsync.manager")
	RecordPoisonMessage("standingsync.manager")
	RecordWarRefresh("saved")

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}
