// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package models

import "fmt"

// Standing bounds used by the game.
const (
	StandingMax = 10.0
	StandingMin = -10.0
)

// EntityKind is the closed set of entity categories that can hold or
// receive standings.
type EntityKind string

const (
	KindCharacter   EntityKind = "character"
	KindCorporation EntityKind = "corporation"
	KindAlliance    EntityKind = "alliance"
	KindFaction     EntityKind = "faction"
)

// Valid reports whether k is one of the known kinds.
func (k EntityKind) Valid() bool {
	switch k {
	case KindCharacter, KindCorporation, KindAlliance, KindFaction:
		return true
	}
	return false
}

// ParseEntityKind converts an ESI contact_type / category string.
func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown entity kind %q", s)
	}
	return k, nil
}

// Entity is a known EVE entity. Name may be empty until resolved.
type Entity struct {
	ID   int64      `json:"id"`
	Kind EntityKind `json:"kind"`
	Name string     `json:"name,omitempty"`
}

func (e Entity) String() string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("%s:%d", e.Kind, e.ID)
}

// EntityRef is a tagged reference to an entity: the kind is decided where
// the reference is built, never guessed later from the id.
type EntityRef struct {
	Kind EntityKind
	ID   int64
}

// CharacterRef returns a reference to a character.
func CharacterRef(id int64) EntityRef { return EntityRef{Kind: KindCharacter, ID: id} }

// CorporationRef returns a reference to a corporation.
func CorporationRef(id int64) EntityRef { return EntityRef{Kind: KindCorporation, ID: id} }

// AllianceRef returns a reference to an alliance.
func AllianceRef(id int64) EntityRef { return EntityRef{Kind: KindAlliance, ID: id} }

// Valid reports whether the reference carries a usable id and kind.
func (r EntityRef) Valid() bool {
	return r.ID > 0 && r.Kind.Valid()
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}
