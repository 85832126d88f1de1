// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/standingsync/internal/database/query"
	"github.com/tomtom215/standingsync/internal/models"
)

// upsertEntitySQL keeps a known name when the incoming one is empty.
const upsertEntitySQL = `
INSERT INTO entities (id, kind, name, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (id) DO UPDATE SET
	kind = excluded.kind,
	name = CASE WHEN excluded.name <> '' THEN excluded.name ELSE name END,
	updated_at = CURRENT_TIMESTAMP`

// UpsertEntity inserts or updates one entity.
func (db *DB) UpsertEntity(ctx context.Context, e models.Entity) error {
	return db.UpsertEntities(ctx, []models.Entity{e})
}

// UpsertEntities inserts or updates entities in one transaction. Duplicate
// ids in the input collapse to the last occurrence.
func (db *DB) UpsertEntities(ctx context.Context, entities []models.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	order := make([]int64, 0, len(entities))
	byID := make(map[int64]models.Entity, len(entities))
	for _, e := range entities {
		if e.ID <= 0 || !e.Kind.Valid() {
			return fmt.Errorf("invalid entity %d of kind %q", e.ID, e.Kind)
		}
		if _, seen := byID[e.ID]; !seen {
			order = append(order, e.ID)
		}
		byID[e.ID] = e
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertEntitySQL)
		if err != nil {
			return fmt.Errorf("failed to prepare entity upsert: %w", err)
		}
		defer closeWithLog(stmt, "statement")

		for _, id := range order {
			e := byID[id]
			if _, err := stmt.ExecContext(ctx, e.ID, string(e.Kind), e.Name); err != nil {
				return fmt.Errorf("failed to upsert entity %d: %w", e.ID, err)
			}
		}
		return nil
	})
}

// Entity returns the entity with the given id.
func (db *DB) Entity(ctx context.Context, id int64) (models.Entity, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		e    models.Entity
		kind string
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, kind, name FROM entities WHERE id = ?`, id).Scan(&e.ID, &kind, &e.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entity{}, fmt.Errorf("entity %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Entity{}, fmt.Errorf("failed to query entity %d: %w", id, err)
	}
	e.Kind = models.EntityKind(kind)
	return e, nil
}

// Entities returns the known entities among ids, keyed by id.
func (db *DB) Entities(ctx context.Context, ids []int64) (map[int64]models.Entity, error) {
	out := make(map[int64]models.Entity, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := query.NewWhereBuilder().AddIn("id", ids).BuildWithPrefix()
	rows, err := db.conn.QueryContext(ctx, `SELECT id, kind, name FROM entities `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var (
			e    models.Entity
			kind string
		)
		if err := rows.Scan(&e.ID, &kind, &e.Name); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		e.Kind = models.EntityKind(kind)
		out[e.ID] = e
	}
	return out, rows.Err()
}

// NamelessEntityIDs returns up to limit ids of entities without a name.
func (db *DB) NamelessEntityIDs(ctx context.Context, limit int) ([]int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 1000
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id FROM entities WHERE name = '' ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query nameless entities: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan entity id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
