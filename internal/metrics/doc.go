// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

/*
Package metrics provides Prometheus metrics for standingsync.

Collectors are registered on the default registry through promauto and
exposed by the ops API at /metrics.

# Available Metrics

Sync Metrics:
  - standingsync_manager_syncs_total: manager sync runs (counter)
    Labels: outcome
  - standingsync_character_syncs_total: character sync runs (counter)
    Labels: outcome
  - standingsync_sync_duration_seconds: duration of a sync unit (histogram)
    Labels: kind (manager, character)
  - standingsync_contacts_written_total: contacts added, updated or deleted
    on characters through ESI (counter)
    Labels: operation (add, update, delete)
  - standingsync_manager_contacts: contacts in each manager's mirror (gauge)
    Labels: alliance_id
  - standingsync_wars_refreshed_total: war refreshes (counter)
    Labels: result (saved, finished, error)

ESI Metrics:
  - esi_requests_total: ESI requests (counter)
    Labels: endpoint, status
  - esi_request_duration_seconds: ESI latency (histogram)
    Labels: endpoint
  - esi_rate_limited_total: 420/429 responses (counter)
  - esi_cache_hits_total / esi_cache_misses_total: ETag cache (counters)

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Labels name, result
  - circuit_breaker_state_transitions_total: Labels name, from_state, to_state

Dispatch Metrics:
  - dispatch_tasks_published_total: Labels topic
  - dispatch_tasks_handled_total: Labels topic, result
  - dispatch_poison_messages_total: Labels topic

HTTP Metrics:
  - http_requests_total: Labels method, endpoint, status
  - http_request_duration_seconds: Labels method, endpoint
*/
package metrics
