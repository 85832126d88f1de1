// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

/*
Package api serves the operations HTTP surface of standingsync with chi.

# Routes

	GET    /healthz                                 liveness
	GET    /readyz                                  database and task router readiness
	GET    /metrics                                 Prometheus exposition
	GET    /api/v1/managers                         sync managers with status
	POST   /api/v1/managers                         register a sync manager
	GET    /api/v1/managers/{allianceID}            one manager and its followers
	POST   /api/v1/managers/{allianceID}/sync       force a manager sync
	POST   /api/v1/characters                       activate a synced character
	GET    /api/v1/characters/{characterID}         one synced character
	POST   /api/v1/characters/{characterID}/sync    force a character sync
	DELETE /api/v1/characters/{characterID}         remove a synced character
	GET    /api/v1/audit                            recent audit events

Sync triggers only enqueue work and answer 202 Accepted; the units run on the
task router.

# Security

When server.api_token is set every /api/v1 route requires
"Authorization: Bearer <token>". Routes under /api/v1 are rate limited per
client IP with httprate, and sync triggers have a tighter limit.

Registrations, removals, rejections and sync triggers are written to the
audit log when one is configured.

# Responses

Every /api/v1 response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}}
*/
package api
