// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package sync

import "github.com/tomtom215/standingsync/internal/models"

// ManagerOutcome is the terminal state of one source sync.
type ManagerOutcome int

const (
	ManagerUnchanged ManagerOutcome = iota
	ManagerChanged
	ManagerNoCharacter
	ManagerInsufficientPermission
	ManagerTokenInvalid
	ManagerTokenExpired
	ManagerUnknownError
)

var managerOutcomes = map[ManagerOutcome]struct {
	name string
	code models.SyncError
}{
	ManagerUnchanged:              {"unchanged", models.ErrorNone},
	ManagerChanged:                {"changed", models.ErrorNone},
	ManagerNoCharacter:            {"no_character", models.ErrorNoCharacter},
	ManagerInsufficientPermission: {"insufficient_permission", models.ErrorInsufficientPermissions},
	ManagerTokenInvalid:           {"token_invalid", models.ErrorTokenInvalid},
	ManagerTokenExpired:           {"token_expired", models.ErrorTokenExpired},
	ManagerUnknownError:           {"unknown_error", models.ErrorUnknown},
}

func (o ManagerOutcome) String() string {
	if v, ok := managerOutcomes[o]; ok {
		return v.name
	}
	return "undefined"
}

// SyncError is the status code persisted for the outcome.
func (o ManagerOutcome) SyncError() models.SyncError {
	if v, ok := managerOutcomes[o]; ok {
		return v.code
	}
	return models.ErrorUnknown
}

// Succeeded reports whether the mirror is current after the run.
func (o ManagerOutcome) Succeeded() bool {
	return o == ManagerUnchanged || o == ManagerChanged
}

// CharacterOutcome is the terminal state of one follower sync.
type CharacterOutcome int

const (
	CharacterUpToDate CharacterOutcome = iota
	CharacterSynced
	CharacterDeactivatedPermission
	CharacterDeactivatedTokenInvalid
	CharacterDeactivatedTokenExpired
	CharacterDeactivatedNotBlue
	CharacterUnknownError

	// CharacterNotRegistered means the registration vanished before the
	// unit ran, typically a redelivered task after a deactivation.
	CharacterNotRegistered

	// CharacterMirrorNotSynced means the alliance mirror has no version yet.
	// The follower's status is left untouched.
	CharacterMirrorNotSynced
)

var characterOutcomes = map[CharacterOutcome]struct {
	name   string
	code   models.SyncError
	reason string
}{
	CharacterUpToDate:                {"up_to_date", models.ErrorNone, ""},
	CharacterSynced:                  {"synced", models.ErrorNone, ""},
	CharacterDeactivatedPermission:   {"deactivated_permission", models.ErrorInsufficientPermissions, "you no longer have permission for this service"},
	CharacterDeactivatedTokenInvalid: {"deactivated_token_invalid", models.ErrorTokenInvalid, "your token is no longer valid"},
	CharacterDeactivatedTokenExpired: {"deactivated_token_expired", models.ErrorTokenExpired, "your token has expired"},
	CharacterDeactivatedNotBlue:      {"deactivated_not_blue", models.ErrorInsufficientStanding, "your character is no longer blue with the alliance"},
	CharacterUnknownError:            {"unknown_error", models.ErrorUnknown, ""},
	CharacterNotRegistered:           {"not_registered", models.ErrorNone, ""},
	CharacterMirrorNotSynced:         {"mirror_not_synced", models.ErrorNone, ""},
}

func (o CharacterOutcome) String() string {
	if v, ok := characterOutcomes[o]; ok {
		return v.name
	}
	return "undefined"
}

// SyncError is the status code for the outcome.
func (o CharacterOutcome) SyncError() models.SyncError {
	if v, ok := characterOutcomes[o]; ok {
		return v.code
	}
	return models.ErrorUnknown
}

// Deactivated reports whether the outcome removes the registration.
func (o CharacterOutcome) Deactivated() bool {
	switch o {
	case CharacterDeactivatedPermission, CharacterDeactivatedTokenInvalid,
		CharacterDeactivatedTokenExpired, CharacterDeactivatedNotBlue:
		return true
	}
	return false
}

// reason is the user-facing cause of a deactivation.
func (o CharacterOutcome) reason() string {
	return characterOutcomes[o].reason
}
