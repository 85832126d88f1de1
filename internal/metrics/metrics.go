// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sync Metrics
	ManagerSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "standingsync_manager_syncs_total",
			Help: "Total number of manager (alliance) sync runs by outcome",
		},
		[]string{"outcome"},
	)

	CharacterSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "standingsync_character_syncs_total",
			Help: "Total number of character sync runs by outcome",
		},
		[]string{"outcome"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "standingsync_sync_duration_seconds",
			Help:    "Duration of a sync unit in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	ContactsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "standingsync_contacts_written_total",
			Help: "Total number of character contacts written through ESI",
		},
		[]string{"operation"}, // "add", "update", "delete"
	)

	ManagerContacts = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "standingsync_manager_contacts",
			Help: "Number of contacts in a manager's mirror",
		},
		[]string{"alliance_id"},
	)

	WarsRefreshed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "standingsync_wars_refreshed_total",
			Help: "Total number of war refreshes by result",
		},
		[]string{"result"}, // "saved", "finished", "error"
	)

	// ESI Metrics
	ESIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "esi_requests_total",
			Help: "Total number of ESI requests",
		},
		[]string{"endpoint", "status"},
	)

	ESIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "esi_request_duration_seconds",
			Help:    "ESI request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ESIRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "esi_rate_limited_total",
			Help: "Total number of ESI responses with status 420 or 429",
		},
	)

	ESICacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "esi_cache_hits_total",
			Help: "Total number of ESI responses served from the ETag cache",
		},
	)

	ESICacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "esi_cache_misses_total",
			Help: "Total number of ESI requests not served from the ETag cache",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Dispatch Metrics
	TasksPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_tasks_published_total",
			Help: "Total number of tasks published",
		},
		[]string{"topic"},
	)

	TasksHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_tasks_handled_total",
			Help: "Total number of tasks handled by result",
		},
		[]string{"topic", "result"}, // "ok", "error"
	)

	PoisonMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_poison_messages_total",
			Help: "Total number of messages routed to the poison queue",
		},
		[]string{"topic"},
	)

	// Supervisor Metrics
	ServiceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supervisor_service_failures_total",
			Help: "Total number of supervised service terminations",
		},
		[]string{"supervisor", "service", "restarting"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordManagerSync records the outcome and duration of a manager sync.
func RecordManagerSync(outcome string, duration time.Duration) {
	ManagerSyncs.WithLabelValues(outcome).Inc()
	SyncDuration.WithLabelValues("manager").Observe(duration.Seconds())
}

// RecordCharacterSync records the outcome and duration of a character sync.
func RecordCharacterSync(outcome string, duration time.Duration) {
	CharacterSyncs.WithLabelValues(outcome).Inc()
	SyncDuration.WithLabelValues("character").Observe(duration.Seconds())
}

// RecordContactsWritten adds n to the contact write counter for operation.
func RecordContactsWritten(operation string, n int) {
	if n <= 0 {
		return
	}
	ContactsWritten.WithLabelValues(operation).Add(float64(n))
}

// SetManagerContacts sets the mirror size gauge of an alliance.
func SetManagerContacts(allianceID int64, n int) {
	ManagerContacts.WithLabelValues(strconv.FormatInt(allianceID, 10)).Set(float64(n))
}

// RecordWarRefresh records one war refresh result.
func RecordWarRefresh(result string) {
	WarsRefreshed.WithLabelValues(result).Inc()
}

// RecordESIRequest records one ESI round trip. Status 0 means the request
// failed before a response arrived.
func RecordESIRequest(endpoint string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	ESIRequestsTotal.WithLabelValues(endpoint, label).Inc()
	ESIRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	if status == 420 || status == 429 {
		ESIRateLimited.Inc()
	}
}

// RecordESICache records an ETag cache lookup.
func RecordESICache(hit bool) {
	if hit {
		ESICacheHits.Inc()
		return
	}
	ESICacheMisses.Inc()
}

// breakerStateValue maps gobreaker state names to gauge values.
var breakerStateValue = map[string]float64{
	"closed":    0,
	"half-open": 1,
	"open":      2,
}

// RecordCircuitBreakerTransition records a state change of breaker name.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	if v, ok := breakerStateValue[to]; ok {
		CircuitBreakerState.WithLabelValues(name).Set(v)
	}
}

// RecordCircuitBreakerRequest records a request result through breaker name.
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordTaskPublished counts a published task.
func RecordTaskPublished(topic string) {
	TasksPublished.WithLabelValues(topic).Inc()
}

// RecordTaskHandled counts a handled task.
func RecordTaskHandled(topic string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	TasksHandled.WithLabelValues(topic, result).Inc()
}

// RecordPoisonMessage counts a message moved to the poison queue.
func RecordPoisonMessage(topic string) {
	PoisonMessages.WithLabelValues(topic).Inc()
}

// RecordServiceFailure counts a supervised service that stopped with an error.
func RecordServiceFailure(supervisor, service string, restarting bool) {
	ServiceFailures.WithLabelValues(supervisor, service, strconv.FormatBool(restarting)).Inc()
}

// RecordAPIRequest records API request metrics.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
