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

	"github.com/tomtom215/standingsync/internal/database/query"
	"github.com/tomtom215/standingsync/internal/models"
)

// SaveCharacter inserts or updates a character's affiliation and owner.
func (db *DB) SaveCharacter(ctx context.Context, c models.Character) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO characters (character_id, name, corporation_id, alliance_id, user_id, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (character_id) DO UPDATE SET
			name = excluded.name,
			corporation_id = excluded.corporation_id,
			alliance_id = excluded.alliance_id,
			user_id = excluded.user_id,
			updated_at = CURRENT_TIMESTAMP`,
		c.ID, c.Name, c.CorporationID, c.AllianceID, c.UserID)
	if err != nil {
		return fmt.Errorf("failed to save character %d: %w", c.ID, err)
	}
	return nil
}

// Character returns a character by id.
func (db *DB) Character(ctx context.Context, characterID int64) (models.Character, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var c models.Character
	err := db.conn.QueryRowContext(ctx, `
		SELECT character_id, name, corporation_id, alliance_id, user_id
		FROM characters WHERE character_id = ?`, characterID).
		Scan(&c.ID, &c.Name, &c.CorporationID, &c.AllianceID, &c.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Character{}, fmt.Errorf("character %d: %w", characterID, ErrNotFound)
	}
	if err != nil {
		return models.Character{}, fmt.Errorf("failed to query character %d: %w", characterID, err)
	}
	return c, nil
}

const syncedCharacterColumns = `character_id, manager_id, COALESCE(version_hash, ''), last_sync, last_error`

func scanSyncedCharacter(row interface{ Scan(...any) error }) (models.SyncedCharacter, error) {
	var (
		c        models.SyncedCharacter
		lastSync sql.NullTime
		code     int
	)
	if err := row.Scan(&c.CharacterID, &c.ManagerID, &c.VersionHash, &lastSync, &code); err != nil {
		return models.SyncedCharacter{}, err
	}
	if lastSync.Valid {
		c.LastSync = lastSync.Time
	}
	c.LastError = models.SyncError(code)
	return c, nil
}

// SaveSyncedCharacter registers a follower under a manager. Re-registering
// under another manager clears the version hash so the next sync is full.
func (db *DB) SaveSyncedCharacter(ctx context.Context, characterID, managerID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO synced_characters (character_id, manager_id)
		VALUES (?, ?)
		ON CONFLICT (character_id) DO UPDATE SET
			version_hash = CASE WHEN manager_id = excluded.manager_id THEN version_hash ELSE NULL END,
			manager_id = excluded.manager_id`,
		characterID, managerID)
	if err != nil {
		return fmt.Errorf("failed to save synced character %d: %w", characterID, err)
	}
	return nil
}

// SyncedCharacter returns a follower registration.
func (db *DB) SyncedCharacter(ctx context.Context, characterID int64) (models.SyncedCharacter, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	c, err := scanSyncedCharacter(db.conn.QueryRowContext(ctx,
		`SELECT `+syncedCharacterColumns+` FROM synced_characters WHERE character_id = ?`, characterID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SyncedCharacter{}, fmt.Errorf("synced character %d: %w", characterID, ErrNotFound)
	}
	if err != nil {
		return models.SyncedCharacter{}, fmt.Errorf("failed to query synced character %d: %w", characterID, err)
	}
	return c, nil
}

// SyncedCharacterFilter narrows SyncedCharacters. Zero fields match all.
type SyncedCharacterFilter struct {
	ManagerID int64
	// StaleFor keeps only followers whose version hash differs from it.
	StaleFor string
}

// SyncedCharacters returns the followers matching filter ordered by id.
func (db *DB) SyncedCharacters(ctx context.Context, filter SyncedCharacterFilter) ([]models.SyncedCharacter, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := query.NewWhereBuilder().
		AddEqual("manager_id", filter.ManagerID).
		AddNotVersion("version_hash", filter.StaleFor).
		BuildWithPrefix()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+syncedCharacterColumns+` FROM synced_characters `+where+` ORDER BY character_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query synced characters: %w", err)
	}
	defer closeWithLog(rows, "rows")

	characters := []models.SyncedCharacter{}
	for rows.Next() {
		c, err := scanSyncedCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan synced character: %w", err)
		}
		characters = append(characters, c)
	}
	return characters, rows.Err()
}

// RecordCharacterStatus stamps the last sync time and error code of a
// follower.
func (db *DB) RecordCharacterStatus(ctx context.Context, characterID int64, lastError models.SyncError, at time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE synced_characters SET last_sync = ?, last_error = ? WHERE character_id = ?`,
		at, int(lastError), characterID)
	if err != nil {
		return fmt.Errorf("failed to record status of synced character %d: %w", characterID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("synced character %d: %w", characterID, ErrNotFound)
	}
	return nil
}

// DeleteSyncedCharacter removes a follower registration and its contacts.
// Deleting a missing registration is not an error.
func (db *DB) DeleteSyncedCharacter(ctx context.Context, characterID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := deleteContactsTx(ctx, tx, models.CharacterOwner(characterID)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM synced_characters WHERE character_id = ?`, characterID); err != nil {
			return fmt.Errorf("failed to delete synced character %d: %w", characterID, err)
		}
		return nil
	})
}
