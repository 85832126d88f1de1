// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package auth

import "errors"

var (
	// ErrTokenInvalid means no usable credential exists for the character.
	ErrTokenInvalid = errors.New("token is invalid")

	// ErrTokenExpired means the access token lapsed and cannot be refreshed.
	ErrTokenExpired = errors.New("token has expired")
)
