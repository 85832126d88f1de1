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
	"time"

	"github.com/tomtom215/standingsync/internal/models"
)

const managerColumns = `alliance_id, COALESCE(character_id, 0), COALESCE(version_hash, ''), last_sync, last_error`

func scanManager(row interface{ Scan(...any) error }) (models.SyncManager, error) {
	var (
		m        models.SyncManager
		lastSync sql.NullTime
		code     int
	)
	if err := row.Scan(&m.AllianceID, &m.CharacterID, &m.VersionHash, &lastSync, &code); err != nil {
		return models.SyncManager{}, err
	}
	if lastSync.Valid {
		m.LastSync = lastSync.Time
	}
	m.LastError = models.SyncError(code)
	return m, nil
}

// SaveManager registers the alliance as a sync manager or updates its
// leadership character. Version hash and status are left untouched.
func (db *DB) SaveManager(ctx context.Context, allianceID, characterID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO sync_managers (alliance_id, character_id)
		VALUES (?, ?)
		ON CONFLICT (alliance_id) DO UPDATE SET character_id = excluded.character_id`,
		allianceID, nullableID(characterID))
	if err != nil {
		return fmt.Errorf("failed to save manager %d: %w", allianceID, err)
	}
	return nil
}

// Manager returns the sync manager of an alliance.
func (db *DB) Manager(ctx context.Context, allianceID int64) (models.SyncManager, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	m, err := scanManager(db.conn.QueryRowContext(ctx,
		`SELECT `+managerColumns+` FROM sync_managers WHERE alliance_id = ?`, allianceID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SyncManager{}, fmt.Errorf("manager %d: %w", allianceID, ErrNotFound)
	}
	if err != nil {
		return models.SyncManager{}, fmt.Errorf("failed to query manager %d: %w", allianceID, err)
	}
	return m, nil
}

// Managers returns all sync managers ordered by alliance id.
func (db *DB) Managers(ctx context.Context) ([]models.SyncManager, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+managerColumns+` FROM sync_managers ORDER BY alliance_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query managers: %w", err)
	}
	defer closeWithLog(rows, "rows")

	managers := []models.SyncManager{}
	for rows.Next() {
		m, err := scanManager(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan manager: %w", err)
		}
		managers = append(managers, m)
	}
	return managers, rows.Err()
}

// RecordManagerStatus stamps the last sync time and error code of a manager.
func (db *DB) RecordManagerStatus(ctx context.Context, allianceID int64, lastError models.SyncError, at time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE sync_managers SET last_sync = ?, last_error = ? WHERE alliance_id = ?`,
		at, int(lastError), allianceID)
	if err != nil {
		return fmt.Errorf("failed to record status of manager %d: %w", allianceID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("manager %d: %w", allianceID, ErrNotFound)
	}
	return nil
}

// DeleteManager removes a manager with its contacts and every follower
// registered to it.
func (db *DB) DeleteManager(ctx context.Context, allianceID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM contacts
			WHERE owner_kind = ? AND owner_id IN (SELECT character_id FROM synced_characters WHERE manager_id = ?)`,
			string(models.OwnerCharacter), allianceID); err != nil {
			return fmt.Errorf("failed to delete follower contacts of manager %d: %w", allianceID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM synced_characters WHERE manager_id = ?`, allianceID); err != nil {
			return fmt.Errorf("failed to delete followers of manager %d: %w", allianceID, err)
		}
		if err := deleteContactsTx(ctx, tx, models.ManagerOwner(allianceID)); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM sync_managers WHERE alliance_id = ?`, allianceID)
		if err != nil {
			return fmt.Errorf("failed to delete manager %d: %w", allianceID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("manager %d: %w", allianceID, ErrNotFound)
		}
		return nil
	})
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
