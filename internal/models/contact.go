// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package models

import "fmt"

// OwnerKind identifies which side of the sync owns a contact row.
type OwnerKind string

const (
	OwnerManager   OwnerKind = "manager"
	OwnerCharacter OwnerKind = "character"
)

// Owner is either a sync manager (by alliance id) or a synced character.
type Owner struct {
	Kind OwnerKind
	ID   int64
}

// ManagerOwner returns the owner for an alliance mirror.
func ManagerOwner(allianceID int64) Owner { return Owner{Kind: OwnerManager, ID: allianceID} }

// CharacterOwner returns the owner for a synced character.
func CharacterOwner(characterID int64) Owner { return Owner{Kind: OwnerCharacter, ID: characterID} }

func (o Owner) String() string {
	return fmt.Sprintf("%s:%d", o.Kind, o.ID)
}

// Contact is one standing an owner holds towards an entity.
type Contact struct {
	EntityID    int64      `json:"contact_id"`
	Kind        EntityKind `json:"contact_type"`
	Standing    float64    `json:"standing"`
	IsWarTarget bool       `json:"is_war_target,omitempty"`
}

// ContactsByID indexes contacts by entity id. Later entries win.
func ContactsByID(contacts []Contact) map[int64]Contact {
	m := make(map[int64]Contact, len(contacts))
	for _, c := range contacts {
		m[c.EntityID] = c
	}
	return m
}
