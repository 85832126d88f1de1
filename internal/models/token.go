// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package models

import "time"

// Token is an EVE SSO credential for one character. RefreshToken is held
// in plaintext in memory only; the store encrypts it.
type Token struct {
	CharacterID  int64
	UserID       int64
	AccessToken  string
	RefreshToken string
	Scopes       []string
	ExpiresAt    time.Time
}

// HasScopes reports whether every scope in required was granted.
func (t *Token) HasScopes(required []string) bool {
	granted := make(map[string]struct{}, len(t.Scopes))
	for _, s := range t.Scopes {
		granted[s] = struct{}{}
	}
	for _, s := range required {
		if _, ok := granted[s]; !ok {
			return false
		}
	}
	return true
}

// Expired reports whether the access token is expired at now, with a small
// margin so a token is not used seconds before it lapses.
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now.Add(30 * time.Second))
}

// NotificationLevel mirrors the inbox severity levels.
type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelSuccess NotificationLevel = "success"
	LevelWarning NotificationLevel = "warning"
	LevelDanger  NotificationLevel = "danger"
)

// Notification is a message delivered to a user's inbox.
type Notification struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Level     NotificationLevel `json:"level"`
	CreatedAt time.Time         `json:"created_at"`
}
