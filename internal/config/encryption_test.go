// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package config

import (
	"errors"
	"strings"
	"testing"
)

func newTestCipher(t *testing.T, secret string) *TokenCipher {
	t.Helper()
	c, err := NewTokenCipher(secret)
	if err != nil {
		t.Fatalf("NewTokenCipher() error = %v", err)
	}
	return c
}

func TestNewTokenCipherEmptySecret(t *testing.T) {
	if _, err := NewTokenCipher(""); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("NewTokenCipher(\"\") error = %v, want ErrEmptySecret", err)
	}
}

func TestTokenCipherRoundTrip(t *testing.T) {
	c := newTestCipher(t, testSecret)
	const refresh = "TgPLbL0Bv0mH-7pq2yD4Vw=="

	sealed, err := c.Seal(90000001, refresh)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if !strings.HasPrefix(sealed, sealedPrefix) {
		t.Errorf("sealed token %q lacks version prefix", sealed)
	}
	if strings.Contains(sealed, refresh) {
		t.Error("sealed token contains the plaintext")
	}

	got, err := c.Open(90000001, sealed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got != refresh {
		t.Errorf("Open() = %q, want %q", got, refresh)
	}
}

func TestTokenCipherFreshNonce(t *testing.T) {
	c := newTestCipher(t, testSecret)
	a, _ := c.Seal(1, "same")
	b, _ := c.Seal(1, "same")
	if a == b {
		t.Error("two seals of the same token are identical")
	}
}

func TestTokenCipherOpenFailures(t *testing.T) {
	c := newTestCipher(t, testSecret)
	other := newTestCipher(t, testSecret+"-rotated")
	sealed, err := c.Seal(1001, "refresh")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	// Alter a nonce character; the final character may only carry padding bits.
	i := len(sealedPrefix) + 4
	flip := byte('A')
	if sealed[i] == 'A' {
		flip = 'B'
	}
	tampered := sealed[:i] + string(flip) + sealed[i+1:]

	tests := []struct {
		name    string
		cipher  *TokenCipher
		charID  int64
		sealed  string
		wantErr error
	}{
		{"other character", c, 1002, sealed, ErrTokenNotOpenable},
		{"other secret", other, 1001, sealed, ErrTokenNotOpenable},
		{"tampered", c, 1001, tampered, ErrTokenNotOpenable},
		{"legacy plaintext", c, 1001, "refresh", ErrMalformedToken},
		{"bad encoding", c, 1001, sealedPrefix + "***", ErrMalformedToken},
		{"too short", c, 1001, sealedPrefix + "AAAA", ErrMalformedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cipher.Open(tt.charID, tt.sealed); !errors.Is(err, tt.wantErr) {
				t.Errorf("Open() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenCipherSealEmpty(t *testing.T) {
	c := newTestCipher(t, testSecret)
	if _, err := c.Seal(1, ""); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("Seal(\"\") error = %v, want ErrEmptyToken", err)
	}
}
