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
	"strings"

	"github.com/tomtom215/standingsync/internal/models"
)

// SaveToken inserts or replaces the stored credential of a character. The
// caller encrypts RefreshToken before saving; the store keeps it opaque.
func (db *DB) SaveToken(ctx context.Context, tok models.Token) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var expiresAt sql.NullTime
	if !tok.ExpiresAt.IsZero() {
		expiresAt = sql.NullTime{Time: tok.ExpiresAt, Valid: true}
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO tokens (character_id, user_id, access_token, refresh_token, scopes, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (character_id) DO UPDATE SET
			user_id = excluded.user_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			scopes = excluded.scopes,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP`,
		tok.CharacterID, tok.UserID, tok.AccessToken, tok.RefreshToken,
		strings.Join(tok.Scopes, " "), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to save token of character %d: %w", tok.CharacterID, err)
	}
	return nil
}

// Token returns the stored credential of a character, refresh token still
// encrypted.
func (db *DB) Token(ctx context.Context, characterID int64) (models.Token, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		tok       models.Token
		scopes    string
		expiresAt sql.NullTime
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT character_id, user_id, access_token, refresh_token, scopes, expires_at
		FROM tokens WHERE character_id = ?`, characterID).
		Scan(&tok.CharacterID, &tok.UserID, &tok.AccessToken, &tok.RefreshToken, &scopes, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Token{}, fmt.Errorf("token of character %d: %w", characterID, ErrNotFound)
	}
	if err != nil {
		return models.Token{}, fmt.Errorf("failed to query token of character %d: %w", characterID, err)
	}
	tok.Scopes = strings.Fields(scopes)
	if expiresAt.Valid {
		tok.ExpiresAt = expiresAt.Time
	}
	return tok, nil
}

// DeleteToken removes the stored credential of a character.
func (db *DB) DeleteToken(ctx context.Context, characterID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, `DELETE FROM tokens WHERE character_id = ?`, characterID); err != nil {
		return fmt.Errorf("failed to delete token of character %d: %w", characterID, err)
	}
	return nil
}
