// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/standingsync/internal/config"
)

func TestPermissionsRoles(t *testing.T) {
	p, err := NewPermissions(&config.SecurityConfig{})
	if err != nil {
		t.Fatalf("NewPermissions() error = %v", err)
	}
	ctx := context.Background()

	check := func(userID int64, perm string, want bool) {
		t.Helper()
		got, err := p.HasPermission(ctx, userID, perm)
		if err != nil {
			t.Fatalf("HasPermission() error = %v", err)
		}
		if got != want {
			t.Errorf("HasPermission(%d, %s) = %v, want %v", userID, perm, got, want)
		}
	}

	check(1, PermAddSyncedCharacter, false)

	if err := p.AssignRole(1, "member"); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}
	check(1, PermAddSyncedCharacter, true)
	check(1, PermAddSyncManager, false)

	if err := p.AssignRole(2, "leadership"); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}
	check(2, PermAddSyncManager, true)
	check(2, PermAddSyncedCharacter, true)

	if err := p.AssignRole(3, "admin"); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}
	check(3, "standingssync.anything", true)

	if err := p.RevokeRole(1, "member"); err != nil {
		t.Fatalf("RevokeRole() error = %v", err)
	}
	check(1, PermAddSyncedCharacter, false)

	if err := p.Grant(4, PermAddSyncManager); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}
	check(4, PermAddSyncManager, true)
	check(4, PermAddSyncedCharacter, false)

	roles, err := p.Roles(2)
	if err != nil || len(roles) != 1 || roles[0] != "role:leadership" {
		t.Errorf("Roles(2) = %v, %v", roles, err)
	}
}

func TestPermissionsPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.csv")
	policy := "p, role:member, standingssync.add_syncedcharacter\ng, user:42, role:member\n"
	if err := os.WriteFile(path, []byte(policy), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	p, err := NewPermissions(&config.SecurityConfig{CasbinPolicyPath: path})
	if err != nil {
		t.Fatalf("NewPermissions() error = %v", err)
	}
	ok, err := p.HasPermission(context.Background(), 42, PermAddSyncedCharacter)
	if err != nil || !ok {
		t.Errorf("HasPermission() = %v, %v, want true", ok, err)
	}
}

func TestLoadEmbeddedPolicyRejectsMalformedLines(t *testing.T) {
	p, err := NewPermissions(&config.SecurityConfig{})
	if err != nil {
		t.Fatalf("NewPermissions() error = %v", err)
	}
	if err := loadEmbeddedPolicy(p.enforcer, "p, only-two"); err == nil {
		t.Error("expected error for malformed line")
	}
	if err := loadEmbeddedPolicy(p.enforcer, "x, a, b"); err == nil {
		t.Error("expected error for unknown policy type")
	}
}
