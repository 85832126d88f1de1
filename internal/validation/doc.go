// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the HTTP API and the ESI client so
// that request bodies and ESI payloads are checked with the same rules.
// Field names in errors are taken from the json tag.
//
// # Custom Tags
//
//   - eve_id: a positive EVE entity id
//   - standing: a contact standing between -10 and 10
//   - contact_type: character, corporation, alliance or faction
//
// # Usage
//
//	type activateRequest struct {
//	    CharacterID int64 `json:"character_id" validate:"eve_id"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // respond 400 with apiErr.Code, apiErr.Message, apiErr.Details
//	}
package validation
