// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// Sealed refresh tokens have the form "v1:" + base64url(nonce || ciphertext).
// The owning character ID is authenticated as additional data.
const (
	sealedPrefix = "v1:"
	hkdfSalt     = "standingsync-sso-refresh-tokens"
	hkdfInfo     = "refresh-token-aead-v1"
)

var (
	ErrEmptySecret      = errors.New("token encryption secret is empty")
	ErrEmptyToken       = errors.New("refresh token is empty")
	ErrMalformedToken   = errors.New("sealed refresh token is malformed")
	ErrTokenNotOpenable = errors.New("sealed refresh token cannot be opened")
)

// TokenCipher seals SSO refresh tokens at rest with AES-256-GCM. The key is
// derived from TOKEN_ENCRYPTION_SECRET with HKDF-SHA256.
type TokenCipher struct {
	aead cipher.AEAD
}

func NewTokenCipher(secret string) (*TokenCipher, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), []byte(hkdfSalt), []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive token key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create token cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create token cipher: %w", err)
	}
	return &TokenCipher{aead: aead}, nil
}

// Seal encrypts the refresh token of characterID.
func (c *TokenCipher) Seal(characterID int64, token string) (string, error) {
	if token == "" {
		return "", ErrEmptyToken
	}
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(token)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	out := c.aead.Seal(nonce, nonce, []byte(token), characterAD(characterID))
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(out), nil
}

// Open decrypts a token sealed for characterID. A token sealed for another
// character, under another secret, or altered in storage returns
// ErrTokenNotOpenable.
func (c *TokenCipher) Open(characterID int64, sealed string) (string, error) {
	encoded, ok := strings.CutPrefix(sealed, sealedPrefix)
	if !ok {
		return "", ErrMalformedToken
	}
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	ns := c.aead.NonceSize()
	if len(data) <= ns+c.aead.Overhead() {
		return "", ErrMalformedToken
	}
	plain, err := c.aead.Open(nil, data[:ns], data[ns:], characterAD(characterID))
	if err != nil {
		return "", ErrTokenNotOpenable
	}
	return string(plain), nil
}

func characterAD(characterID int64) []byte {
	return strconv.AppendInt([]byte("character:"), characterID, 10)
}
