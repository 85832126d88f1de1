// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package sync

import (
	"context"
	"time"

	"github.com/tomtom215/standingsync/internal/config"
	"github.com/tomtom215/standingsync/internal/logging"
	"github.com/tomtom215/standingsync/internal/models"
)

// ESI scopes required by each side of the sync.
var (
	ManagerScopes   = []string{"esi-alliances.read_contacts.v1"}
	CharacterScopes = []string{"esi-characters.read_contacts.v1", "esi-characters.write_contacts.v1"}
)

// Settings is the policy snapshot a sync unit runs with.
type Settings struct {
	MinStanding         float64
	AddWarTargets       bool
	ReplaceContacts     bool
	WarTargetsLabelName string
	DeleteBatchSize     int
	WriteBatchSize      int
}

// SettingsFromConfig copies the sync policy out of cfg.
func SettingsFromConfig(cfg *config.SyncConfig) Settings {
	return Settings{
		MinStanding:         cfg.MinStanding,
		AddWarTargets:       cfg.AddWarTargets,
		ReplaceContacts:     cfg.ReplaceContacts,
		WarTargetsLabelName: cfg.WarTargetsLabelName,
		DeleteBatchSize:     cfg.DeleteBatchSize,
		WriteBatchSize:      cfg.WriteBatchSize,
	}
}

func (s Settings) policy() TargetPolicy {
	return TargetPolicy{AddWarTargets: s.AddWarTargets, ReplaceAll: s.ReplaceContacts}
}

func (s Settings) deleteBatch() int {
	if s.DeleteBatchSize <= 0 {
		return 20
	}
	return s.DeleteBatchSize
}

func (s Settings) writeBatch() int {
	if s.WriteBatchSize <= 0 {
		return 100
	}
	return s.WriteBatchSize
}

// Deps are the collaborators of an Engine.
type Deps struct {
	Store       Store
	Contacts    ContactsAPI
	Tokens      TokenProvider
	Permissions PermissionChecker
	Notifier    Notifier
	Dispatcher  Dispatcher
	Wars        *WarRegistry
	Directory   *Directory
}

// Engine runs manager and follower sync units.
type Engine struct {
	store      Store
	contacts   ContactsAPI
	tokens     TokenProvider
	perms      PermissionChecker
	notifier   Notifier
	dispatcher Dispatcher
	wars       *WarRegistry
	directory  *Directory
	settings   Settings
	now        func() time.Time
}

// NewEngine creates an engine running every unit with settings.
func NewEngine(deps Deps, settings Settings) *Engine {
	return &Engine{
		store:      deps.Store,
		contacts:   deps.Contacts,
		tokens:     deps.Tokens,
		perms:      deps.Permissions,
		notifier:   deps.Notifier,
		dispatcher: deps.Dispatcher,
		wars:       deps.Wars,
		directory:  deps.Directory,
		settings:   settings,
		now:        time.Now,
	}
}

// RefreshWar runs one war refresh unit.
func (e *Engine) RefreshWar(ctx context.Context, task WarRefreshTask) error {
	result, err := e.wars.Refresh(ctx, task.WarID)
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Debug().Int64("war_id", task.WarID).Str("result", string(result)).Msg("War refreshed")
	return nil
}

// notify sends n and only logs failures: notifications never fail a unit.
func (e *Engine) notify(ctx context.Context, n models.Notification) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, n); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("user_id", n.UserID).Str("title", n.Title).Msg("Failed to send notification")
	}
}

// entityName returns a display name for id, falling back to kind:id.
func (e *Engine) entityName(ctx context.Context, id int64, kind models.EntityKind) string {
	if e.directory != nil {
		if entity, ok, err := e.directory.Lookup(ctx, id); err == nil && ok && entity.Name != "" {
			return entity.Name
		}
	}
	return models.Entity{ID: id, Kind: kind}.String()
}
