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
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/standingsync/internal/config"
	"github.com/tomtom215/standingsync/internal/database"
	"github.com/tomtom215/standingsync/internal/models"
)

const testSecret = "standingsync-test-secret-0123456789abcdef"

var contactScopes = []string{"esi-characters.read_contacts.v1", "esi-characters.write_contacts.v1"}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[int64]models.Token
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[int64]models.Token)}
}

func (s *fakeTokenStore) Token(_ context.Context, characterID int64) (models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[characterID]
	if !ok {
		return models.Token{}, database.ErrNotFound
	}
	return tok, nil
}

func (s *fakeTokenStore) SaveToken(_ context.Context, tok models.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tok.CharacterID] = tok
	return nil
}

func signedAccessToken(t *testing.T, characterID int64, scopes []string, exp time.Time) string {
	t.Helper()
	claims := SSOClaims{
		Scopes: scopes,
		Name:   "Test Pilot",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("CHARACTER:EVE:%d", characterID),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("sso-test-key"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return raw
}

func newTestSource(t *testing.T, tokenURL string) (*TokenSource, *fakeTokenStore, *config.TokenCipher) {
	t.Helper()
	enc, err := config.NewTokenCipher(testSecret)
	if err != nil {
		t.Fatalf("NewTokenCipher() error = %v", err)
	}
	store := newFakeTokenStore()
	src := NewTokenSource(store, enc, &config.SSOConfig{ClientID: "id", ClientSecret: "secret", TokenURL: tokenURL})
	return src, store, enc
}

func TestTokenMissingOrUnscoped(t *testing.T) {
	src, store, _ := newTestSource(t, "http://unused")
	ctx := context.Background()

	if _, err := src.Token(ctx, 1001, contactScopes); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("missing token error = %v, want ErrTokenInvalid", err)
	}

	store.tokens[1001] = models.Token{
		CharacterID: 1001,
		AccessToken: "access",
		Scopes:      []string{"esi-characters.read_contacts.v1"},
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	if _, err := src.Token(ctx, 1001, contactScopes); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("unscoped token error = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenStillValid(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	src, store, _ := newTestSource(t, server.URL)
	store.tokens[1001] = models.Token{
		CharacterID: 1001,
		AccessToken: "still-good",
		Scopes:      contactScopes,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	got, err := src.Token(context.Background(), 1001, contactScopes)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if got != "still-good" {
		t.Errorf("Token() = %q", got)
	}
	if calls.Load() != 0 {
		t.Error("a valid token must not be refreshed")
	}
}

func TestTokenExpiredWithoutRefresh(t *testing.T) {
	src, store, _ := newTestSource(t, "http://unused")
	store.tokens[1001] = models.Token{
		CharacterID: 1001,
		AccessToken: "old",
		Scopes:      contactScopes,
		ExpiresAt:   time.Now().Add(-time.Hour),
	}
	if _, err := src.Token(context.Background(), 1001, contactScopes); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenRefresh(t *testing.T) {
	exp := time.Now().Add(20 * time.Minute).Truncate(time.Second)
	access := signedAccessToken(t, 1001, contactScopes, exp)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		if r.Form.Get("grant_type") != "refresh_token" || r.Form.Get("refresh_token") != "old-refresh" {
			t.Errorf("unexpected form %v", r.Form)
		}
		if user, _, ok := r.BasicAuth(); !ok || user != "id" {
			t.Error("client credentials not sent in header")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer","expires_in":1200,"refresh_token":"new-refresh"}`, access)
	}))
	defer server.Close()

	src, store, enc := newTestSource(t, server.URL)
	encrypted, err := enc.Seal(1001, "old-refresh")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	store.tokens[1001] = models.Token{
		CharacterID:  1001,
		UserID:       7,
		AccessToken:  "old",
		RefreshToken: encrypted,
		Scopes:       contactScopes,
		ExpiresAt:    time.Now().Add(-time.Minute),
	}

	got, err := src.Token(context.Background(), 1001, contactScopes)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if got != access {
		t.Error("Token() did not return the refreshed access token")
	}

	saved := store.tokens[1001]
	if !saved.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", saved.ExpiresAt, exp)
	}
	if saved.UserID != 7 {
		t.Errorf("UserID = %d, want 7", saved.UserID)
	}
	plain, err := enc.Open(1001, saved.RefreshToken)
	if err != nil || plain != "new-refresh" {
		t.Errorf("stored refresh token = %q (%v), want new-refresh", plain, err)
	}
}

func TestTokenRefreshFailures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantInvalid bool
	}{
		{"revoked", http.StatusBadRequest, `{"error":"invalid_grant","error_description":"revoked"}`, true},
		{"sso down", http.StatusBadGateway, `{"error":"bad gateway"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			src, store, enc := newTestSource(t, server.URL)
			encrypted, _ := enc.Seal(1001, "refresh")
			store.tokens[1001] = models.Token{
				CharacterID:  1001,
				RefreshToken: encrypted,
				Scopes:       contactScopes,
				ExpiresAt:    time.Now().Add(-time.Minute),
			}

			_, err := src.Token(context.Background(), 1001, contactScopes)
			if err == nil {
				t.Fatal("Token() expected error")
			}
			if got := errors.Is(err, ErrTokenInvalid); got != tt.wantInvalid {
				t.Errorf("errors.Is(ErrTokenInvalid) = %v, want %v (err = %v)", got, tt.wantInvalid, err)
			}
			if errors.Is(err, ErrTokenExpired) {
				t.Errorf("refresh failure classified as expired: %v", err)
			}
		})
	}
}

func TestSave(t *testing.T) {
	src, store, enc := newTestSource(t, "http://unused")
	exp := time.Now().Add(20 * time.Minute).Truncate(time.Second)
	access := signedAccessToken(t, 2002, contactScopes, exp)

	tok, err := src.Save(context.Background(), 9, access, "refresh")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if tok.CharacterID != 2002 || tok.UserID != 9 || len(tok.Scopes) != 2 {
		t.Errorf("unexpected token %+v", tok)
	}
	stored := store.tokens[2002]
	if stored.RefreshToken == "refresh" {
		t.Error("refresh token stored in plaintext")
	}
	if plain, _ := enc.Open(2002, stored.RefreshToken); plain != "refresh" {
		t.Errorf("decrypted refresh token = %q", plain)
	}
}

func TestParseAccessTokenRejectsForeignSubject(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SSOClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "CORPORATION:EVE:1"},
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	if _, err := ParseAccessToken(raw); err == nil {
		t.Error("expected error for non-character subject")
	}
	if _, err := ParseAccessToken("not-a-jwt"); err == nil {
		t.Error("expected error for garbage token")
	}
}
