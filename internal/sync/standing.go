// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package sync

import "github.com/tomtom215/standingsync/internal/models"

// EffectiveStanding returns the standing the mirror holds towards a
// character: a character entry wins over a corporation entry, which wins
// over an alliance entry. Tiers are never combined. Without any match the
// standing is neutral.
func EffectiveStanding(mirror []models.Contact, c models.Character) float64 {
	byID := models.ContactsByID(mirror)
	if contact, ok := byID[c.ID]; ok {
		return contact.Standing
	}
	if contact, ok := byID[c.CorporationID]; ok {
		return contact.Standing
	}
	if c.AllianceID != 0 {
		if contact, ok := byID[c.AllianceID]; ok {
			return contact.Standing
		}
	}
	return 0
}
