// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

/*
Package esi is the EVE Swagger Interface client used by the sync engines.

Client Features:
  - Pagination through the X-Pages response header
  - Client-side token bucket (golang.org/x/time/rate)
  - Backoff on 420 (error limited) and 429 responses, honoring Retry-After
    and X-Esi-Error-Limit-Reset, plus bounded retries on 502/503/504
  - Circuit breaker (sony/gobreaker) that opens after consecutive server
    failures; client errors such as 403 or 404 never trip it
  - Optional ETag cache on BadgerDB: GET responses are revalidated with
    If-None-Match and 304 responses are served from the cache
  - Payload validation through internal/validation (go-playground/validator)

Endpoints:
  - contacts.go: alliance and character contacts, labels, contact writes
  - wars.go: war id list and war details
  - universe.go: bulk id to name resolution
  - status.go: server status and the online check

Errors:
Non-2xx responses surface as *HTTPError carrying status, method, endpoint
and a bounded body excerpt. Requests rejected by an open circuit wrap
ErrUnavailable.
*/
package esi
