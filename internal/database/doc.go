// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

// Package database is the DuckDB-backed store of standingsync.
//
// # Overview
//
// The store keeps the replicated state of the sync engines:
//   - entities: characters, corporations, alliances and factions seen in
//     contact lists and wars
//   - contacts: the mirror of each sync manager and the last applied target
//     set of each synced character, keyed by owner
//   - sync_managers / synced_characters: registrations with version hash,
//     last sync time and last error code
//   - characters: affiliation chain and owning user
//   - wars / war_allies: the local war registry
//   - tokens: SSO credentials with encrypted refresh tokens
//   - notifications: the user inbox
//
// # Files
//
//   - database.go: lifecycle (open, initialize, close, checkpoint)
//   - schema.go / migrations.go: tables, indexes and versioned migrations
//   - tx.go: transaction helper with conflict retry
//   - entities.go, contacts.go, managers.go, characters.go, wars.go,
//     tokens.go, notifications.go: repositories
//
// # Transactions
//
// Contact replacement for an owner and the owner's version hash are written
// in one transaction, so a reader never observes a version hash that does
// not match the stored contacts. DuckDB uses optimistic concurrency; write
// conflicts between concurrent units are retried a bounded number of times.
//
// # Errors
//
// Lookups of a single row return ErrNotFound when the row is missing.
package database
