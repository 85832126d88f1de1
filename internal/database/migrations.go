// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/standingsync/internal/logging"
)

// migration is a schema change applied after the base tables exist.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations are applied in slice order, each in its own transaction together
// with its schema_migrations row. Append only; never renumber or edit an
// applied entry.
//
// DuckDB rejects ON CONFLICT DO UPDATE on indexed columns, so only columns
// no upsert touches are indexed.
var migrations = []migration{
	{1, "contacts_owner_index", `CREATE INDEX IF NOT EXISTS idx_contacts_owner ON contacts(owner_kind, owner_id)`},
	{2, "war_allies_war_index", `CREATE INDEX IF NOT EXISTS idx_war_allies_war ON war_allies(war_id)`},
	{3, "notifications_user_index", `CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at)`},
}

const createMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// migrate applies pending migrations and returns the resulting version.
func (db *DB) migrate(ctx context.Context) (int, error) {
	if _, err := db.conn.ExecContext(ctx, createMigrationsTable); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	current, err := db.SchemaVersion(ctx)
	if err != nil {
		return 0, err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := db.withTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.stmt); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.version, m.name)
			return err
		})
		if err != nil {
			return current, fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		logging.Info().Int("version", m.version).Str("name", m.name).Msg("Applied schema migration")
		current = m.version
	}
	return current, nil
}

// SchemaVersion returns the highest applied migration, 0 for none.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
