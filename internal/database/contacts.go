// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/standingsync/internal/models"
)

// ownerTable maps an owner kind to its registration table and key column.
func ownerTable(kind models.OwnerKind) (table, key string, err error) {
	switch kind {
	case models.OwnerManager:
		return "sync_managers", "alliance_id", nil
	case models.OwnerCharacter:
		return "synced_characters", "character_id", nil
	default:
		return "", "", fmt.Errorf("unknown contact owner kind %q", kind)
	}
}

// Contacts returns the stored contacts of owner ordered by entity id.
func (db *DB) Contacts(ctx context.Context, owner models.Owner) ([]models.Contact, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT entity_id, kind, standing, is_war_target
		FROM contacts
		WHERE owner_kind = ? AND owner_id = ?
		ORDER BY entity_id`, string(owner.Kind), owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts of %s: %w", owner, err)
	}
	defer closeWithLog(rows, "rows")

	contacts := []models.Contact{}
	for rows.Next() {
		var (
			c    models.Contact
			kind string
		)
		if err := rows.Scan(&c.EntityID, &kind, &c.Standing, &c.IsWarTarget); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		c.Kind = models.EntityKind(kind)
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// CountContacts returns the number of stored contacts of owner.
func (db *DB) CountContacts(ctx context.Context, owner models.Owner) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contacts WHERE owner_kind = ? AND owner_id = ?`,
		string(owner.Kind), owner.ID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count contacts of %s: %w", owner, err)
	}
	return n, nil
}

// ReplaceContacts replaces every contact row of owner with contacts and sets
// the owner's version hash, atomically. Duplicate entity ids collapse to the
// last occurrence. Returns ErrNotFound, and changes nothing, when the owner
// registration no longer exists.
func (db *DB) ReplaceContacts(ctx context.Context, owner models.Owner, contacts []models.Contact, versionHash string) error {
	table, key, err := ownerTable(owner.Kind)
	if err != nil {
		return err
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	unique := dedupeContacts(contacts)

	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE `+table+` SET version_hash = ? WHERE `+key+` = ?`, versionHash, owner.ID)
		if err != nil {
			return fmt.Errorf("failed to set version hash of %s: %w", owner, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%s: %w", owner, ErrNotFound)
		}

		if err := deleteContactsTx(ctx, tx, owner); err != nil {
			return err
		}

		if len(unique) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO contacts (owner_kind, owner_id, entity_id, kind, standing, is_war_target)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare contact insert: %w", err)
		}
		defer closeWithLog(stmt, "statement")

		for _, c := range unique {
			if _, err := stmt.ExecContext(ctx,
				string(owner.Kind), owner.ID, c.EntityID, string(c.Kind), c.Standing, c.IsWarTarget); err != nil {
				return fmt.Errorf("failed to insert contact %d of %s: %w", c.EntityID, owner, err)
			}
		}
		return nil
	})
}

// deleteContactsTx removes all contacts of owner inside tx.
func deleteContactsTx(ctx context.Context, tx *sql.Tx, owner models.Owner) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM contacts WHERE owner_kind = ? AND owner_id = ?`,
		string(owner.Kind), owner.ID); err != nil {
		return fmt.Errorf("failed to delete contacts of %s: %w", owner, err)
	}
	return nil
}

// dedupeContacts keeps the last occurrence of each entity id, preserving
// first-seen order.
func dedupeContacts(contacts []models.Contact) []models.Contact {
	idx := make(map[int64]int, len(contacts))
	out := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		if i, ok := idx[c.EntityID]; ok {
			out[i] = c
			continue
		}
		idx[c.EntityID] = len(out)
		out = append(out, c)
	}
	return out
}
