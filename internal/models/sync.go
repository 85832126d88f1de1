// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package models

import "time"

// SyncError is the persisted outcome code of the last sync attempt.
type SyncError int

const (
	ErrorNone                    SyncError = 0
	ErrorTokenInvalid            SyncError = 1
	ErrorTokenExpired            SyncError = 2
	ErrorInsufficientPermissions SyncError = 3
	ErrorNoCharacter             SyncError = 4
	ErrorESIUnavailable          SyncError = 5
	ErrorInsufficientStanding    SyncError = 6
	ErrorUnknown                 SyncError = 99
)

var syncErrorText = map[SyncError]string{
	ErrorNone:                    "No error",
	ErrorTokenInvalid:            "Invalid token",
	ErrorTokenExpired:            "Expired token",
	ErrorInsufficientPermissions: "Insufficient permissions",
	ErrorNoCharacter:             "No character set for fetching alliance contacts",
	ErrorESIUnavailable:          "ESI API is currently unavailable",
	ErrorInsufficientStanding:    "Insufficient standing",
	ErrorUnknown:                 "Unknown error",
}

func (e SyncError) String() string {
	if s, ok := syncErrorText[e]; ok {
		return s
	}
	return "Undefined error"
}

// StatusMessage renders the user-facing status of a sync owner.
func StatusMessage(lastError SyncError, lastSync time.Time) string {
	switch {
	case lastError != ErrorNone:
		return lastError.String()
	case !lastSync.IsZero():
		return "OK"
	default:
		return "Not synced yet"
	}
}

// SyncManager is an alliance whose contacts are mirrored to followers.
// CharacterID is the leadership character used to read the alliance
// contacts; 0 means none is configured. An empty VersionHash means the
// mirror has never been synced.
type SyncManager struct {
	AllianceID  int64     `json:"alliance_id"`
	CharacterID int64     `json:"character_id,omitempty"`
	VersionHash string    `json:"version_hash,omitempty"`
	LastSync    time.Time `json:"last_sync,omitempty"`
	LastError   SyncError `json:"last_error"`
}

// StatusMessage returns the user-facing status text.
func (m *SyncManager) StatusMessage() string {
	return StatusMessage(m.LastError, m.LastSync)
}

// SyncedCharacter is a follower receiving the mirror of ManagerID.
type SyncedCharacter struct {
	CharacterID int64     `json:"character_id"`
	ManagerID   int64     `json:"manager_id"`
	VersionHash string    `json:"version_hash,omitempty"`
	LastSync    time.Time `json:"last_sync,omitempty"`
	LastError   SyncError `json:"last_error"`
}

// StatusMessage returns the user-facing status text.
func (c *SyncedCharacter) StatusMessage() string {
	return StatusMessage(c.LastError, c.LastSync)
}

// IsCurrent reports whether the follower already holds version.
func (c *SyncedCharacter) IsCurrent(version string) bool {
	return version != "" && c.VersionHash == version
}

// Character is a registered character with its affiliation chain and the
// user who owns it. AllianceID is 0 when the corporation has no alliance.
type Character struct {
	ID            int64  `json:"character_id"`
	Name          string `json:"name"`
	CorporationID int64  `json:"corporation_id"`
	AllianceID    int64  `json:"alliance_id,omitempty"`
	UserID        int64  `json:"user_id"`
}

func (c Character) String() string {
	return c.Name
}
