// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext bounds DDL execution at startup.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core tables. Statements are idempotent.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// tableCreationQueries returns the base schema.
//
// contacts has no primary key: ReplaceContacts deletes and re-inserts an
// owner's rows inside one transaction and deduplicates by entity id before
// inserting, which keeps (owner_kind, owner_id, entity_id) unique.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS entities (
			id BIGINT PRIMARY KEY,
			kind TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS contacts (
			owner_kind TEXT NOT NULL,
			owner_id BIGINT NOT NULL,
			entity_id BIGINT NOT NULL,
			kind TEXT NOT NULL,
			standing DOUBLE NOT NULL,
			is_war_target BOOLEAN NOT NULL DEFAULT FALSE
		);`,

		`CREATE TABLE IF NOT EXISTS sync_managers (
			alliance_id BIGINT PRIMARY KEY,
			character_id BIGINT,
			version_hash TEXT,
			last_sync TIMESTAMPTZ,
			last_error INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS synced_characters (
			character_id BIGINT PRIMARY KEY,
			manager_id BIGINT NOT NULL,
			version_hash TEXT,
			last_sync TIMESTAMPTZ,
			last_error INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS characters (
			character_id BIGINT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			corporation_id BIGINT NOT NULL,
			alliance_id BIGINT NOT NULL DEFAULT 0,
			user_id BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS wars (
			war_id BIGINT PRIMARY KEY,
			aggressor_id BIGINT NOT NULL,
			aggressor_kind TEXT NOT NULL,
			defender_id BIGINT NOT NULL,
			defender_kind TEXT NOT NULL,
			declared TIMESTAMPTZ NOT NULL,
			started TIMESTAMPTZ,
			finished TIMESTAMPTZ,
			retracted TIMESTAMPTZ,
			is_mutual BOOLEAN NOT NULL DEFAULT FALSE,
			is_open_for_allies BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS war_allies (
			war_id BIGINT NOT NULL,
			entity_id BIGINT NOT NULL,
			kind TEXT NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS tokens (
			character_id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			access_token TEXT NOT NULL DEFAULT '',
			refresh_token TEXT NOT NULL,
			scopes TEXT NOT NULL DEFAULT '',
			expires_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE SEQUENCE IF NOT EXISTS notifications_id_seq START 1;`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id BIGINT PRIMARY KEY DEFAULT nextval('notifications_id_seq'),
			user_id BIGINT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			level TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
}
