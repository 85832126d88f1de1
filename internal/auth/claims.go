// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const subjectPrefix = "CHARACTER:EVE:"

// SSOClaims are the claims of an EVE SSO v2 access token.
type SSOClaims struct {
	Scopes jwt.ClaimStrings `json:"scp"`
	Name   string           `json:"name"`
	Owner  string           `json:"owner"`
	jwt.RegisteredClaims
}

// AccessTokenInfo is what standingsync reads out of an access token.
type AccessTokenInfo struct {
	CharacterID int64
	Name        string
	Scopes      []string
	ExpiresAt   time.Time
}

// ParseAccessToken decodes an SSO access token without verifying its
// signature. Tokens only ever come straight from the SSO token endpoint over
// TLS.
func ParseAccessToken(raw string) (AccessTokenInfo, error) {
	claims := &SSOClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return AccessTokenInfo{}, fmt.Errorf("failed to parse access token: %w", err)
	}

	idPart, ok := strings.CutPrefix(claims.Subject, subjectPrefix)
	if !ok {
		return AccessTokenInfo{}, fmt.Errorf("unexpected token subject %q", claims.Subject)
	}
	characterID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || characterID <= 0 {
		return AccessTokenInfo{}, fmt.Errorf("invalid character id in subject %q", claims.Subject)
	}

	info := AccessTokenInfo{
		CharacterID: characterID,
		Name:        claims.Name,
		Scopes:      []string(claims.Scopes),
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
