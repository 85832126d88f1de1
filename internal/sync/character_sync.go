// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

/*
character_sync.go - Follower Sync

A follower sync converges one character's in-game contacts to the target set
derived from its alliance mirror. The mirror's version hash is re-read when
the unit runs, so a follower always converges to the current mirror and not
to the version that triggered the dispatch.

Deactivation outcomes delete the follower's registration and notify the
owning user. Unknown errors keep the registration, record the status and are
returned so the dispatch layer can retry.
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/standingsync/internal/auth"
	"github.com/tomtom215/standingsync/internal/database"
	"github.com/tomtom215/standingsync/internal/logging"
	"github.com/tomtom215/standingsync/internal/metrics"
	"github.com/tomtom215/standingsync/internal/models"
	esimodel "github.com/tomtom215/standingsync/internal/models/esi"
)

// SyncCharacter runs one follower sync unit.
func (e *Engine) SyncCharacter(ctx context.Context, task CharacterSyncTask) (CharacterOutcome, error) {
	start := e.now()
	log := logging.Ctx(ctx).With().Int64("character_id", task.CharacterID).Logger()

	outcome, version, syncErr := e.syncCharacterContacts(ctx, &log, task)

	var errs []error
	switch {
	case outcome == CharacterNotRegistered:
		log.Debug().Msg("Character is not registered for sync, skipping")
	case outcome == CharacterMirrorNotSynced:
		log.Debug().Msg("Alliance mirror not synced yet, skipping")
	case outcome.Deactivated():
		if err := e.deactivate(ctx, task.CharacterID, outcome); err != nil {
			errs = append(errs, err)
		}
	default:
		if syncErr != nil {
			log.Error().Err(syncErr).Msg("Character contact sync failed")
			errs = append(errs, syncErr)
		}
		if err := e.store.RecordCharacterStatus(ctx, task.CharacterID, outcome.SyncError(), e.now()); err != nil {
			log.Error().Err(err).Msg("Failed to record character status")
			errs = append(errs, err)
		}
	}

	elapsed := e.now().Sub(start)
	metrics.RecordCharacterSync(outcome.String(), elapsed)
	log.Info().
		Str("outcome", outcome.String()).
		Str("version_hash", version).
		Dur("duration", elapsed).
		Msg("Character sync finished")
	return outcome, errors.Join(errs...)
}

// syncCharacterContacts runs the follower state machine and returns the
// mirror version the follower holds afterwards.
func (e *Engine) syncCharacterContacts(ctx context.Context, log *zerolog.Logger, task CharacterSyncTask) (CharacterOutcome, string, error) {
	follower, err := e.store.SyncedCharacter(ctx, task.CharacterID)
	if errors.Is(err, database.ErrNotFound) {
		return CharacterNotRegistered, "", nil
	}
	if err != nil {
		return CharacterUnknownError, "", fmt.Errorf("failed to load synced character: %w", err)
	}
	character, err := e.store.Character(ctx, task.CharacterID)
	if err != nil {
		return CharacterUnknownError, "", fmt.Errorf("failed to load character: %w", err)
	}

	allowed, err := e.perms.HasPermission(ctx, character.UserID, auth.PermAddSyncedCharacter)
	if err != nil {
		return CharacterUnknownError, "", fmt.Errorf("permission check failed: %w", err)
	}
	if !allowed {
		return CharacterDeactivatedPermission, "", nil
	}

	managerID := follower.ManagerID
	if task.ManagerID != 0 {
		managerID = task.ManagerID
	}
	mgr, err := e.store.Manager(ctx, managerID)
	if err != nil {
		return CharacterUnknownError, "", fmt.Errorf("failed to load manager %d: %w", managerID, err)
	}
	if mgr.VersionHash == "" {
		return CharacterMirrorNotSynced, "", nil
	}
	if !task.Force && follower.IsCurrent(mgr.VersionHash) {
		return CharacterUpToDate, mgr.VersionHash, nil
	}

	token, err := e.tokens.Token(ctx, character.ID, CharacterScopes)
	switch {
	case errors.Is(err, auth.ErrTokenInvalid):
		return CharacterDeactivatedTokenInvalid, "", nil
	case errors.Is(err, auth.ErrTokenExpired):
		return CharacterDeactivatedTokenExpired, "", nil
	case err != nil:
		return CharacterUnknownError, "", fmt.Errorf("failed to acquire token: %w", err)
	}

	mirror, err := e.store.Contacts(ctx, models.ManagerOwner(mgr.AllianceID))
	if err != nil {
		return CharacterUnknownError, "", fmt.Errorf("failed to load alliance contacts: %w", err)
	}
	standing := EffectiveStanding(mirror, character)
	if standing < e.settings.MinStanding {
		log.Info().Float64("standing", standing).Float64("min_standing", e.settings.MinStanding).Msg("Character is no longer blue")
		return CharacterDeactivatedNotBlue, "", nil
	}

	var warTargets []models.Entity
	if e.settings.AddWarTargets && e.wars != nil {
		warTargets, err = e.wars.WarTargets(ctx, mgr.AllianceID, e.now())
		if err != nil {
			return CharacterUnknownError, "", fmt.Errorf("failed to load war targets: %w", err)
		}
	}
	target := BuildTargetSet(mirror, warTargets, e.settings.policy())

	current, err := e.contacts.CharacterContacts(ctx, character.ID, token)
	if err != nil {
		return CharacterUnknownError, "", fmt.Errorf("failed to fetch character contacts: %w", err)
	}
	labelID, err := e.warLabelID(ctx, character.ID, token)
	if err != nil {
		return CharacterUnknownError, "", err
	}

	diff := diffContacts(current, target, labelID, e.settings.ReplaceContacts)
	if err := e.applyDiff(ctx, character.ID, token, diff); err != nil {
		return CharacterUnknownError, "", err
	}

	if err := e.store.ReplaceContacts(ctx, models.CharacterOwner(character.ID), target.Contacts(), mgr.VersionHash); err != nil {
		return CharacterUnknownError, "", fmt.Errorf("failed to store character contacts: %w", err)
	}
	log.Info().
		Int("added", countIDs(diff.adds)).
		Int("updated", countIDs(diff.updates)).
		Int("deleted", len(diff.deletes)).
		Msg("Updated character contacts")
	return CharacterSynced, mgr.VersionHash, nil
}

// warLabelID returns the id of the follower's war target label or 0 when
// no label applies.
func (e *Engine) warLabelID(ctx context.Context, characterID int64, token string) (int64, error) {
	name := e.settings.WarTargetsLabelName
	if !e.settings.AddWarTargets || name == "" {
		return 0, nil
	}
	labels, err := e.contacts.CharacterContactLabels(ctx, characterID, token)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch contact labels: %w", err)
	}
	return findLabel(labels, name), nil
}

func findLabel(labels []esimodel.ContactLabel, name string) int64 {
	for _, l := range labels {
		if l.LabelName == name {
			return l.LabelID
		}
	}
	return 0
}

// applyDiff pushes deletes first, then adds, then updates.
func (e *Engine) applyDiff(ctx context.Context, characterID int64, token string, diff contactDiff) error {
	if diff.empty() {
		return nil
	}
	for _, ids := range chunkIDs(diff.deletes, e.settings.deleteBatch()) {
		if err := e.contacts.DeleteContacts(ctx, characterID, token, ids); err != nil {
			return fmt.Errorf("failed to delete contacts: %w", err)
		}
		metrics.RecordContactsWritten("delete", len(ids))
	}
	for _, g := range diff.adds {
		for _, ids := range chunkIDs(g.ids, e.settings.writeBatch()) {
			if err := e.contacts.AddContacts(ctx, characterID, token, ids, g.write.standing, g.write.labels()); err != nil {
				return fmt.Errorf("failed to add contacts: %w", err)
			}
			metrics.RecordContactsWritten("add", len(ids))
		}
	}
	for _, g := range diff.updates {
		for _, ids := range chunkIDs(g.ids, e.settings.writeBatch()) {
			if err := e.contacts.UpdateContacts(ctx, characterID, token, ids, g.write.standing, g.write.labels()); err != nil {
				return fmt.Errorf("failed to update contacts: %w", err)
			}
			metrics.RecordContactsWritten("update", len(ids))
		}
	}
	return nil
}

// deactivate drops the follower's registration and tells its owner why.
func (e *Engine) deactivate(ctx context.Context, characterID int64, outcome CharacterOutcome) error {
	character, charErr := e.store.Character(ctx, characterID)
	if err := e.store.DeleteSyncedCharacter(ctx, characterID); err != nil {
		return fmt.Errorf("failed to deactivate character %d: %w", characterID, err)
	}
	logging.Ctx(ctx).Warn().
		Int64("character_id", characterID).
		Str("outcome", outcome.String()).
		Msg("Deactivated character sync")

	if charErr != nil {
		logging.Ctx(ctx).Warn().Err(charErr).Int64("character_id", characterID).Msg("Cannot notify owner of deactivated character")
		return nil
	}
	name := character.Name
	if name == "" {
		name = fmt.Sprintf("#%d", characterID)
	}
	e.notify(ctx, deactivationNotification(character.UserID, name, outcome.reason()))
	return nil
}

func countIDs(groups []writeGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.ids)
	}
	return n
}
