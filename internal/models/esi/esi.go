// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

// Package esi holds the EVE Swagger Interface payloads used by standingsync.
// Field names follow the ESI JSON schema; validate tags are checked by the
// client after decoding.
package esi

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/standingsync/internal/models"
)

// ErrInvalidParticipant is returned for a war participant carrying neither
// an alliance nor a corporation id.
var ErrInvalidParticipant = errors.New("war participant has no alliance or corporation id")

// Contact is an entry of GET /alliances/{id}/contacts/ or
// GET /characters/{id}/contacts/.
type Contact struct {
	ContactID   int64   `json:"contact_id" validate:"eve_id"`
	ContactType string  `json:"contact_type" validate:"contact_type"`
	Standing    float64 `json:"standing" validate:"standing"`
	LabelIDs    []int64 `json:"label_ids,omitempty"`
	IsBlocked   *bool   `json:"is_blocked,omitempty"`
	IsWatched   *bool   `json:"is_watched,omitempty"`
}

// ContactLabel is an entry of GET /characters/{id}/contacts/labels/.
type ContactLabel struct {
	LabelID   int64  `json:"label_id" validate:"eve_id"`
	LabelName string `json:"label_name"`
}

// WarParticipant is the aggressor, defender or an ally of a war.
type WarParticipant struct {
	AllianceID    int64   `json:"alliance_id,omitempty"`
	CorporationID int64   `json:"corporation_id,omitempty"`
	ISKDestroyed  float64 `json:"isk_destroyed,omitempty"`
	ShipsKilled   int64   `json:"ships_killed,omitempty"`
}

// Ref returns the tagged reference for the participant. Alliance ids take
// precedence over corporation ids.
func (p WarParticipant) Ref() (models.EntityRef, error) {
	switch {
	case p.AllianceID > 0:
		return models.AllianceRef(p.AllianceID), nil
	case p.CorporationID > 0:
		return models.CorporationRef(p.CorporationID), nil
	default:
		return models.EntityRef{}, fmt.Errorf("%w: %+v", ErrInvalidParticipant, p)
	}
}

// War is the payload of GET /wars/{war_id}/.
type War struct {
	ID            int64            `json:"id" validate:"eve_id"`
	Aggressor     WarParticipant   `json:"aggressor"`
	Defender      WarParticipant   `json:"defender"`
	Allies        []WarParticipant `json:"allies,omitempty"`
	Declared      time.Time        `json:"declared"`
	Started       *time.Time       `json:"started,omitempty"`
	Finished      *time.Time       `json:"finished,omitempty"`
	Retracted     *time.Time       `json:"retracted,omitempty"`
	Mutual        bool             `json:"mutual"`
	OpenForAllies bool             `json:"open_for_allies"`
}

// UniverseName is an entry of POST /universe/names/.
type UniverseName struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// ServerStatus is the payload of GET /status/.
type ServerStatus struct {
	Players       int64     `json:"players"`
	ServerVersion string    `json:"server_version"`
	StartTime     time.Time `json:"start_time"`
	VIP           *bool     `json:"vip,omitempty"`
}

// ErrorResponse is the body ESI returns on 4xx/5xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
