// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/standingsync/internal/auth"
	"github.com/tomtom215/standingsync/internal/database"
	"github.com/tomtom215/standingsync/internal/logging"
	"github.com/tomtom215/standingsync/internal/models"
)

// Registration errors. API handlers map them to 4xx responses.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotOwner         = errors.New("character does not belong to user")
	ErrNoAlliance       = errors.New("character is not a member of an alliance")
	ErrAllianceMember   = errors.New("members of the alliance do not need to be synced")
	ErrNotBlue          = errors.New("character does not have sufficient standing with the alliance")
	ErrNoManager        = errors.New("alliance has no sync manager")
)

// Registrar handles opt-in and opt-out of managers and followers.
type Registrar struct {
	store       Store
	tokens      TokenProvider
	perms       PermissionChecker
	dispatcher  Dispatcher
	minStanding float64
}

// NewRegistrar creates a registrar sharing the engine's collaborators.
func NewRegistrar(deps Deps, settings Settings) *Registrar {
	return &Registrar{
		store:       deps.Store,
		tokens:      deps.Tokens,
		perms:       deps.Permissions,
		dispatcher:  deps.Dispatcher,
		minStanding: settings.MinStanding,
	}
}

// RegisterManager makes characterID the leadership character of its
// alliance and dispatches a first source sync reported back to userID.
func (r *Registrar) RegisterManager(ctx context.Context, userID, characterID int64) (models.SyncManager, error) {
	character, err := r.ownedCharacter(ctx, userID, characterID, auth.PermAddSyncManager)
	if err != nil {
		return models.SyncManager{}, err
	}
	if character.AllianceID == 0 {
		return models.SyncManager{}, ErrNoAlliance
	}
	if _, err := r.tokens.Token(ctx, characterID, ManagerScopes); err != nil {
		return models.SyncManager{}, fmt.Errorf("no usable token for character %d: %w", characterID, err)
	}

	if err := r.store.SaveManager(ctx, character.AllianceID, characterID); err != nil {
		return models.SyncManager{}, fmt.Errorf("failed to save manager: %w", err)
	}
	mgr, err := r.store.Manager(ctx, character.AllianceID)
	if err != nil {
		return models.SyncManager{}, fmt.Errorf("failed to reload manager: %w", err)
	}

	task := ManagerSyncTask{AllianceID: mgr.AllianceID, Force: true, ReportTo: userID}
	if err := r.dispatcher.DispatchManagerSync(ctx, task); err != nil {
		return mgr, fmt.Errorf("failed to dispatch manager sync: %w", err)
	}
	logging.Ctx(ctx).Info().
		Int64("alliance_id", mgr.AllianceID).
		Int64("character_id", characterID).
		Msg("Registered sync manager")
	return mgr, nil
}

// ActivateCharacter registers characterID as a follower of allianceID's
// mirror and dispatches its first sync.
func (r *Registrar) ActivateCharacter(ctx context.Context, userID, characterID, allianceID int64) (models.SyncedCharacter, error) {
	character, err := r.ownedCharacter(ctx, userID, characterID, auth.PermAddSyncedCharacter)
	if err != nil {
		return models.SyncedCharacter{}, err
	}
	if character.AllianceID != 0 && character.AllianceID == allianceID {
		return models.SyncedCharacter{}, ErrAllianceMember
	}

	mgr, err := r.store.Manager(ctx, allianceID)
	if errors.Is(err, database.ErrNotFound) {
		return models.SyncedCharacter{}, ErrNoManager
	}
	if err != nil {
		return models.SyncedCharacter{}, fmt.Errorf("failed to load manager: %w", err)
	}

	mirror, err := r.store.Contacts(ctx, models.ManagerOwner(mgr.AllianceID))
	if err != nil {
		return models.SyncedCharacter{}, fmt.Errorf("failed to load alliance contacts: %w", err)
	}
	if standing := EffectiveStanding(mirror, character); standing < r.minStanding {
		return models.SyncedCharacter{}, fmt.Errorf("%w: the standing value is: %.1f", ErrNotBlue, standing)
	}

	if _, err := r.tokens.Token(ctx, characterID, CharacterScopes); err != nil {
		return models.SyncedCharacter{}, fmt.Errorf("no usable token for character %d: %w", characterID, err)
	}

	if err := r.store.SaveSyncedCharacter(ctx, characterID, mgr.AllianceID); err != nil {
		return models.SyncedCharacter{}, fmt.Errorf("failed to save synced character: %w", err)
	}
	follower, err := r.store.SyncedCharacter(ctx, characterID)
	if err != nil {
		return models.SyncedCharacter{}, fmt.Errorf("failed to reload synced character: %w", err)
	}

	task := CharacterSyncTask{CharacterID: characterID, ManagerID: mgr.AllianceID}
	if err := r.dispatcher.DispatchCharacterSync(ctx, task); err != nil {
		return follower, fmt.Errorf("failed to dispatch character sync: %w", err)
	}
	logging.Ctx(ctx).Info().
		Int64("alliance_id", mgr.AllianceID).
		Int64("character_id", characterID).
		Msg("Activated character sync")
	return follower, nil
}

// RemoveCharacter deletes userID's follower registration for characterID.
// Removing a character that is not registered succeeds.
func (r *Registrar) RemoveCharacter(ctx context.Context, userID, characterID int64) error {
	character, err := r.store.Character(ctx, characterID)
	if err != nil {
		return fmt.Errorf("failed to load character: %w", err)
	}
	if character.UserID != userID {
		return ErrNotOwner
	}
	if err := r.store.DeleteSyncedCharacter(ctx, characterID); err != nil {
		return fmt.Errorf("failed to remove synced character: %w", err)
	}
	logging.Ctx(ctx).Info().Int64("character_id", characterID).Msg("Removed character sync")
	return nil
}

func (r *Registrar) ownedCharacter(ctx context.Context, userID, characterID int64, perm string) (models.Character, error) {
	allowed, err := r.perms.HasPermission(ctx, userID, perm)
	if err != nil {
		return models.Character{}, fmt.Errorf("permission check failed: %w", err)
	}
	if !allowed {
		return models.Character{}, ErrPermissionDenied
	}
	character, err := r.store.Character(ctx, characterID)
	if err != nil {
		return models.Character{}, fmt.Errorf("failed to load character: %w", err)
	}
	if character.UserID != userID {
		return models.Character{}, ErrNotOwner
	}
	return character, nil
}
