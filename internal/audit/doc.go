// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

// Package audit records who registered, removed or triggered what.
//
// Events are written asynchronously through a buffered Logger to a Store.
// DuckDBStore persists them in the audit_events table of the main database;
// MemoryStore keeps a bounded in-process history.
//
// # Event Types
//
//   - registration.manager: a character became the sync manager of its alliance
//   - registration.character: a follower character was activated
//   - registration.removed: a follower character was removed
//   - registration.rejected: a registration failed a business rule
//   - authz.denied: the caller lacked a permission or did not own the character
//   - sync.triggered: a forced manager or character sync was enqueued
//
// # Retention
//
// Logger.Cleanup deletes events older than Config.RetentionDays. The server
// runs it from a supervised ticker.
package audit
