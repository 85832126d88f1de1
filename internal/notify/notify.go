// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

// Package notify delivers user notifications to the database inbox.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/standingsync/internal/logging"
	"github.com/tomtom215/standingsync/internal/models"
)

// ErrNoRecipient is returned for a notification without a user.
var ErrNoRecipient = errors.New("notification has no recipient")

// Inbox persists notifications.
type Inbox interface {
	AddNotification(ctx context.Context, n models.Notification) (int64, error)
}

// Service writes notifications to the inbox and mirrors them to the log.
type Service struct {
	inbox Inbox
	now   func() time.Time
}

// New creates a notification service on top of inbox.
func New(inbox Inbox) *Service {
	return &Service{inbox: inbox, now: time.Now}
}

// Notify stores n for its user.
func (s *Service) Notify(ctx context.Context, n models.Notification) error {
	if n.UserID <= 0 {
		return ErrNoRecipient
	}
	if n.Level == "" {
		n.Level = models.LevelInfo
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}

	id, err := s.inbox.AddNotification(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to store notification for user %d: %w", n.UserID, err)
	}

	logging.Ctx(ctx).Info().
		Int64("notification_id", id).
		Int64("user_id", n.UserID).
		Str("level", string(n.Level)).
		Str("title", n.Title).
		Msg("Notification sent")
	return nil
}
