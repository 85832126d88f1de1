// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package auth

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/standingsync/internal/cache"
	"github.com/tomtom215/standingsync/internal/config"
	"github.com/tomtom215/standingsync/internal/logging"
)

// Permission codes checked by the sync engines.
const (
	PermAddSyncManager     = "standingssync.add_syncmanager"
	PermAddSyncedCharacter = "standingssync.add_syncedcharacter"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

const decisionCacheTTL = time.Minute

// Permissions answers whether a user holds a permission code.
type Permissions struct {
	enforcer  *casbin.SyncedEnforcer
	decisions *cache.TTL[string, bool]
}

// NewPermissions loads the RBAC model and policy. Empty or missing paths
// fall back to the embedded defaults.
func NewPermissions(cfg *config.SecurityConfig) (*Permissions, error) {
	var m model.Model
	var err error
	if cfg.CasbinModelPath != "" && fileExists(cfg.CasbinModelPath) {
		m, err = model.NewModelFromFile(cfg.CasbinModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.CasbinPolicyPath != "" && fileExists(cfg.CasbinPolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.CasbinPolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadEmbeddedPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	decisions, err := cache.New[string, bool](1024, decisionCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create decision cache: %w", err)
	}
	return &Permissions{
		enforcer:  enforcer,
		decisions: decisions,
	}, nil
}

func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) != 3 {
			return fmt.Errorf("malformed policy line %q", line)
		}
		switch parts[0] {
		case "p":
			if _, err := enforcer.AddPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case "g":
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("unknown policy type %q", parts[0])
		}
	}
	return nil
}

// UserSubject is the Casbin subject for a user id.
func UserSubject(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

// HasPermission reports whether userID holds perm directly or via a role.
func (p *Permissions) HasPermission(ctx context.Context, userID int64, perm string) (bool, error) {
	subject := UserSubject(userID)
	key := subject + "|" + perm
	if allowed, ok := p.decisions.Get(key); ok {
		return allowed, nil
	}

	allowed, err := p.enforcer.Enforce(subject, perm)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	p.decisions.Set(key, allowed)

	logging.Ctx(ctx).Trace().Str("subject", subject).Str("permission", perm).Bool("allowed", allowed).Msg("Permission check")
	return allowed, nil
}

// AssignRole binds userID to role (without the "role:" prefix).
func (p *Permissions) AssignRole(userID int64, role string) error {
	if _, err := p.enforcer.AddGroupingPolicy(UserSubject(userID), "role:"+role); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	p.decisions.Clear()
	return nil
}

// RevokeRole removes the binding of userID to role.
func (p *Permissions) RevokeRole(userID int64, role string) error {
	if _, err := p.enforcer.RemoveGroupingPolicy(UserSubject(userID), "role:"+role); err != nil {
		return fmt.Errorf("failed to revoke role: %w", err)
	}
	p.decisions.Clear()
	return nil
}

// Grant gives userID a single permission code.
func (p *Permissions) Grant(userID int64, perm string) error {
	if _, err := p.enforcer.AddPolicy(UserSubject(userID), perm); err != nil {
		return fmt.Errorf("failed to grant permission: %w", err)
	}
	p.decisions.Clear()
	return nil
}

// Roles returns the roles directly bound to userID.
func (p *Permissions) Roles(userID int64) ([]string, error) {
	return p.enforcer.GetRolesForUser(UserSubject(userID))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
