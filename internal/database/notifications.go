// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/standingsync/internal/models"
)

// AddNotification stores n and returns its id. A zero CreatedAt is stamped
// with the current time.
func (db *DB) AddNotification(ctx context.Context, n models.Notification) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Level == "" {
		n.Level = models.LevelInfo
	}

	var id int64
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO notifications (user_id, title, message, level, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		n.UserID, n.Title, n.Message, string(n.Level), n.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to add notification for user %d: %w", n.UserID, err)
	}
	return id, nil
}

// Notifications returns the newest notifications of a user, at most limit.
func (db *DB) Notifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_id, title, message, level, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications of user %d: %w", userID, err)
	}
	defer closeWithLog(rows, "rows")

	out := []models.Notification{}
	for rows.Next() {
		var (
			n     models.Notification
			level string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &level, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Level = models.NotificationLevel(level)
		out = append(out, n)
	}
	return out, rows.Err()
}
