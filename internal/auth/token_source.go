// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/tomtom215/standingsync/internal/config"
	"github.com/tomtom215/standingsync/internal/database"
	"github.com/tomtom215/standingsync/internal/logging"
	"github.com/tomtom215/standingsync/internal/models"
)

// TokenStore persists SSO tokens. RefreshToken is stored as given.
type TokenStore interface {
	Token(ctx context.Context, characterID int64) (models.Token, error)
	SaveToken(ctx context.Context, tok models.Token) error
}

// TokenSource hands out access tokens, refreshing them when they lapse.
type TokenSource struct {
	store  TokenStore
	cipher *config.TokenCipher
	oauth  *oauth2.Config
	now    func() time.Time

	// locks serializes refreshes per character so concurrent units do not
	// burn the same refresh token twice.
	locks sync.Map
}

// NewTokenSource creates a token source backed by store.
func NewTokenSource(store TokenStore, cipher *config.TokenCipher, sso *config.SSOConfig) *TokenSource {
	return &TokenSource{
		store:  store,
		cipher: cipher,
		oauth: &oauth2.Config{
			ClientID:     sso.ClientID,
			ClientSecret: sso.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  sso.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		now: time.Now,
	}
}

// Token returns a valid access token for characterID carrying every scope
// in scopes.
func (s *TokenSource) Token(ctx context.Context, characterID int64, scopes []string) (string, error) {
	lock := s.lockFor(characterID)
	lock.Lock()
	defer lock.Unlock()

	tok, err := s.store.Token(ctx, characterID)
	if errors.Is(err, database.ErrNotFound) {
		return "", fmt.Errorf("no token for character %d: %w", characterID, ErrTokenInvalid)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	if !tok.HasScopes(scopes) {
		return "", fmt.Errorf("token of character %d lacks scopes %v: %w", characterID, scopes, ErrTokenInvalid)
	}
	if !tok.Expired(s.now()) {
		return tok.AccessToken, nil
	}
	return s.refresh(ctx, tok)
}

func (s *TokenSource) refresh(ctx context.Context, tok models.Token) (string, error) {
	if tok.RefreshToken == "" {
		return "", fmt.Errorf("token of character %d has no refresh token: %w", tok.CharacterID, ErrTokenExpired)
	}
	refreshToken, err := s.cipher.Open(tok.CharacterID, tok.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("refresh token of character %d is unreadable: %w", tok.CharacterID, ErrTokenInvalid)
	}

	fresh, err := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && isRevoked(retrieveErr) {
			logging.Ctx(ctx).Info().Int64("character_id", tok.CharacterID).Str("error_code", retrieveErr.ErrorCode).Msg("Refresh token rejected by SSO")
			return "", fmt.Errorf("refresh of character %d rejected: %w", tok.CharacterID, ErrTokenInvalid)
		}
		return "", fmt.Errorf("failed to refresh token of character %d: %w", tok.CharacterID, err)
	}

	updated := tok
	updated.AccessToken = fresh.AccessToken
	updated.ExpiresAt = fresh.Expiry
	if info, err := ParseAccessToken(fresh.AccessToken); err == nil {
		updated.Scopes = info.Scopes
		if !info.ExpiresAt.IsZero() {
			updated.ExpiresAt = info.ExpiresAt
		}
	} else {
		logging.Ctx(ctx).Debug().Err(err).Int64("character_id", tok.CharacterID).Msg("Refreshed access token is not a JWT, keeping stored scopes")
	}
	if fresh.RefreshToken != "" && fresh.RefreshToken != refreshToken {
		if updated.RefreshToken, err = s.cipher.Seal(tok.CharacterID, fresh.RefreshToken); err != nil {
			return "", fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
	}
	if err := s.store.SaveToken(ctx, updated); err != nil {
		return "", fmt.Errorf("failed to save refreshed token: %w", err)
	}

	logging.Ctx(ctx).Debug().Int64("character_id", tok.CharacterID).Time("expires_at", updated.ExpiresAt).Msg("Access token refreshed")
	return updated.AccessToken, nil
}

// Save stores a token pair obtained from the SSO login flow and returns the
// stored token. The character and scopes are read from the access token.
func (s *TokenSource) Save(ctx context.Context, userID int64, accessToken, refreshToken string) (models.Token, error) {
	info, err := ParseAccessToken(accessToken)
	if err != nil {
		return models.Token{}, err
	}
	tok := models.Token{
		CharacterID: info.CharacterID,
		UserID:      userID,
		AccessToken: accessToken,
		Scopes:      info.Scopes,
		ExpiresAt:   info.ExpiresAt,
	}
	if refreshToken != "" {
		if tok.RefreshToken, err = s.cipher.Seal(tok.CharacterID, refreshToken); err != nil {
			return models.Token{}, fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
	}
	if err := s.store.SaveToken(ctx, tok); err != nil {
		return models.Token{}, fmt.Errorf("failed to save token: %w", err)
	}
	return tok, nil
}

func (s *TokenSource) lockFor(characterID int64) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(characterID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// isRevoked reports SSO answers that mean the refresh token is gone for good.
func isRevoked(err *oauth2.RetrieveError) bool {
	switch err.ErrorCode {
	case "invalid_grant", "invalid_token", "unauthorized_client":
		return true
	}
	if err.Response != nil {
		code := err.Response.StatusCode
		return code == http.StatusBadRequest || code == http.StatusUnauthorized
	}
	return false
}
