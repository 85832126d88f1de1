// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package sync

// ManagerSyncTask asks for a source sync of one alliance. ReportTo, when
// set, is the user who receives a completion notification.
type ManagerSyncTask struct {
	AllianceID int64 `json:"alliance_id" validate:"gt=0"`
	Force      bool  `json:"force,omitempty"`
	ReportTo   int64 `json:"report_to,omitempty" validate:"gte=0"`
}

// CharacterSyncTask asks for a follower sync. ManagerID overrides the
// follower's own manager when non-zero.
type CharacterSyncTask struct {
	CharacterID int64 `json:"character_id" validate:"gt=0"`
	ManagerID   int64 `json:"manager_id,omitempty" validate:"gte=0"`
	Force       bool  `json:"force,omitempty"`
}

// WarRefreshTask asks for a refresh of one war.
type WarRefreshTask struct {
	WarID int64 `json:"war_id" validate:"gt=0"`
}
