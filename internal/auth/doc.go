// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

/*
Package auth provides the credentials and permissions the sync engines consult.

TokenSource hands out ESI access tokens for a character with the requested
scopes. Expired access tokens are refreshed through the EVE SSO token endpoint
(golang.org/x/oauth2); refresh tokens are sealed per character with
config.TokenCipher. Failures are classified as ErrTokenInvalid (no token,
missing scopes, revoked or unreadable refresh token) or ErrTokenExpired (no
refresh token left), and anything else is returned as is.

Permissions is a Casbin RBAC enforcer. Subjects are users ("user:<id>"),
objects are permission codes such as "standingssync.add_syncmanager". The
model and a default policy are embedded; both can be overridden from files.
*/
package auth
