// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package sync

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/standingsync/internal/auth"
	"github.com/tomtom215/standingsync/internal/models"
)

func newTestRegistrar(h *harness) *Registrar {
	return NewRegistrar(Deps{
		Store:       h.store,
		Tokens:      h.tokens,
		Permissions: h.perms,
		Dispatcher:  h.dispatcher,
	}, defaultSettings())
}

func TestRegisterManager(t *testing.T) {
	h := newHarness(defaultSettings())
	delete(h.store.managers, testAllianceID)
	r := newTestRegistrar(h)
	ctx := context.Background()

	mgr, err := r.RegisterManager(ctx, testLeaderUser, testLeaderID)
	if err != nil {
		t.Fatalf("RegisterManager() error = %v", err)
	}
	if mgr.AllianceID != testAllianceID || mgr.CharacterID != testLeaderID {
		t.Errorf("manager = %+v", mgr)
	}
	if len(h.dispatcher.managers) != 1 {
		t.Fatalf("dispatched %d manager syncs, want 1", len(h.dispatcher.managers))
	}
	if task := h.dispatcher.managers[0]; task.ReportTo != testLeaderUser || !task.Force {
		t.Errorf("task = %+v, want forced and reported", task)
	}

	if _, err := r.RegisterManager(ctx, testFollowerUID, testLeaderID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("foreign character error = %v, want ErrNotOwner", err)
	}
	if _, err := r.RegisterManager(ctx, testFollowerUID, testFollowerID); !errors.Is(err, ErrNoAlliance) {
		t.Errorf("no alliance error = %v, want ErrNoAlliance", err)
	}
	h.perms.denied[testLeaderUser] = true
	if _, err := r.RegisterManager(ctx, testLeaderUser, testLeaderID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("denied error = %v, want ErrPermissionDenied", err)
	}
}

func TestRegisterManagerRequiresToken(t *testing.T) {
	h := newHarness(defaultSettings())
	h.tokens.errs[testLeaderID] = auth.ErrTokenInvalid
	r := newTestRegistrar(h)

	if _, err := r.RegisterManager(context.Background(), testLeaderUser, testLeaderID); !errors.Is(err, auth.ErrTokenInvalid) {
		t.Errorf("RegisterManager() error = %v, want ErrTokenInvalid", err)
	}
	if len(h.dispatcher.managers) != 0 {
		t.Error("sync dispatched without a usable token")
	}
}

func TestActivateCharacter(t *testing.T) {
	h := newHarness(defaultSettings())
	delete(h.store.followers, testFollowerID)
	h.store.contacts[models.ManagerOwner(testAllianceID)] = []models.Contact{
		{EntityID: testFollowerCID, Kind: models.KindCorporation, Standing: 5},
	}
	r := newTestRegistrar(h)
	ctx := context.Background()

	follower, err := r.ActivateCharacter(ctx, testFollowerUID, testFollowerID, testAllianceID)
	if err != nil {
		t.Fatalf("ActivateCharacter() error = %v", err)
	}
	if follower.ManagerID != testAllianceID || follower.VersionHash != "" {
		t.Errorf("follower = %+v", follower)
	}
	if len(h.dispatcher.characters) != 1 || h.dispatcher.characters[0].CharacterID != testFollowerID {
		t.Errorf("dispatched = %+v", h.dispatcher.characters)
	}

	if err := r.RemoveCharacter(ctx, testLeaderUser, testFollowerID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("RemoveCharacter() by other user error = %v, want ErrNotOwner", err)
	}
	if err := r.RemoveCharacter(ctx, testFollowerUID, testFollowerID); err != nil {
		t.Fatalf("RemoveCharacter() error = %v", err)
	}
	if _, ok := h.store.followers[testFollowerID]; ok {
		t.Error("registration still present after removal")
	}
	if err := r.RemoveCharacter(ctx, testFollowerUID, testFollowerID); err != nil {
		t.Errorf("second RemoveCharacter() error = %v, want nil", err)
	}
}

func TestActivateCharacterRejections(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(h *harness)
		charID   int64
		userID   int64
		alliance int64
		wantErr  error
	}{
		{"not blue", func(h *harness) {}, testFollowerID, testFollowerUID, testAllianceID, ErrNotBlue},
		{"alliance member", func(h *harness) {}, testLeaderID, testLeaderUser, testAllianceID, ErrAllianceMember},
		{"no manager", func(h *harness) {}, testFollowerID, testFollowerUID, 4242, ErrNoManager},
		{"permission", func(h *harness) { h.perms.denied[testFollowerUID] = true }, testFollowerID, testFollowerUID, testAllianceID, ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(defaultSettings())
			tt.setup(h)
			r := newTestRegistrar(h)

			_, err := r.ActivateCharacter(context.Background(), tt.userID, tt.charID, tt.alliance)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ActivateCharacter() error = %v, want %v", err, tt.wantErr)
			}
			if len(h.dispatcher.characters) != 0 {
				t.Error("sync dispatched for a rejected activation")
			}
		})
	}
}

func TestActivateCharacterReportsStanding(t *testing.T) {
	h := newHarness(defaultSettings())
	h.store.contacts[models.ManagerOwner(testAllianceID)] = []models.Contact{
		{EntityID: testFollowerCID, Kind: models.KindCorporation, Standing: -2.5},
	}
	_, err := newTestRegistrar(h).ActivateCharacter(context.Background(), testFollowerUID, testFollowerID, testAllianceID)
	if err == nil || !strings.Contains(err.Error(), "-2.5") {
		t.Errorf("ActivateCharacter() error = %v, want standing in message", err)
	}
}
