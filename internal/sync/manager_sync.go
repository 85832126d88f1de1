// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

/*
manager_sync.go - Source Sync

A source sync fetches the full contact list of an alliance through its
leadership character, fingerprints it and, when the fingerprint changed or the
run is forced, replaces the locally stored mirror in one transaction together
with the new version hash. Afterwards every follower whose version hash lags is
dispatched for a follower sync.

Terminal states:
  - ManagerNoCharacter: no leadership character configured
  - ManagerInsufficientPermission: the character's user lost the grant
  - ManagerTokenInvalid / ManagerTokenExpired: no usable credential
  - ManagerUnchanged / ManagerChanged: success
  - ManagerUnknownError: anything else, returned to the caller

The last sync time and status code are stamped on every run.
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/standingsync/internal/auth"
	"github.com/tomtom215/standingsync/internal/database"
	"github.com/tomtom215/standingsync/internal/logging"
	"github.com/tomtom215/standingsync/internal/metrics"
	"github.com/tomtom215/standingsync/internal/models"
	esimodel "github.com/tomtom215/standingsync/internal/models/esi"
)

// SyncManager runs one source sync unit.
func (e *Engine) SyncManager(ctx context.Context, task ManagerSyncTask) (ManagerOutcome, error) {
	start := e.now()
	log := logging.Ctx(ctx).With().Int64("alliance_id", task.AllianceID).Logger()

	mgr, err := e.store.Manager(ctx, task.AllianceID)
	if err != nil {
		metrics.RecordManagerSync(ManagerUnknownError.String(), e.now().Sub(start))
		return ManagerUnknownError, fmt.Errorf("failed to load manager %d: %w", task.AllianceID, err)
	}

	outcome, hash, syncErr := e.syncManagerContacts(ctx, mgr, task.Force)

	var errs []error
	if syncErr != nil {
		log.Error().Err(syncErr).Msg("Alliance contact sync failed")
		errs = append(errs, syncErr)
	}
	if err := e.store.RecordManagerStatus(ctx, mgr.AllianceID, outcome.SyncError(), e.now()); err != nil {
		log.Error().Err(err).Msg("Failed to record manager status")
		errs = append(errs, err)
	}

	if outcome.Succeeded() {
		if err := e.dispatchStaleFollowers(ctx, mgr.AllianceID, hash); err != nil {
			errs = append(errs, err)
		}
	} else if syncErr == nil {
		log.Warn().Str("outcome", outcome.String()).Msg("Alliance contact sync aborted")
	}

	if task.ReportTo > 0 {
		e.reportManagerSync(ctx, task.ReportTo, mgr.AllianceID, outcome.Succeeded())
	}

	elapsed := e.now().Sub(start)
	metrics.RecordManagerSync(outcome.String(), elapsed)
	log.Info().Str("outcome", outcome.String()).Dur("duration", elapsed).Msg("Manager sync finished")
	return outcome, errors.Join(errs...)
}

// syncManagerContacts does the fetch-compare-replace part and returns the
// current version hash on success.
func (e *Engine) syncManagerContacts(ctx context.Context, mgr models.SyncManager, force bool) (ManagerOutcome, string, error) {
	if mgr.CharacterID == 0 {
		return ManagerNoCharacter, "", nil
	}
	character, err := e.store.Character(ctx, mgr.CharacterID)
	if errors.Is(err, database.ErrNotFound) {
		return ManagerNoCharacter, "", nil
	}
	if err != nil {
		return ManagerUnknownError, "", fmt.Errorf("failed to load character %d: %w", mgr.CharacterID, err)
	}

	allowed, err := e.perms.HasPermission(ctx, character.UserID, auth.PermAddSyncManager)
	if err != nil {
		return ManagerUnknownError, "", fmt.Errorf("permission check failed: %w", err)
	}
	if !allowed {
		return ManagerInsufficientPermission, "", nil
	}

	token, err := e.tokens.Token(ctx, character.ID, ManagerScopes)
	switch {
	case errors.Is(err, auth.ErrTokenInvalid):
		return ManagerTokenInvalid, "", nil
	case errors.Is(err, auth.ErrTokenExpired):
		return ManagerTokenExpired, "", nil
	case err != nil:
		return ManagerUnknownError, "", fmt.Errorf("failed to acquire token: %w", err)
	}

	remote, err := e.contacts.AllianceContacts(ctx, mgr.AllianceID, token)
	if err != nil {
		return ManagerUnknownError, "", fmt.Errorf("failed to fetch alliance contacts: %w", err)
	}
	hash, err := Fingerprint(remote)
	if err != nil {
		return ManagerUnknownError, "", err
	}
	if !force && hash == mgr.VersionHash {
		logging.Ctx(ctx).Debug().Int64("alliance_id", mgr.AllianceID).Msg("Alliance contacts are unchanged")
		return ManagerUnchanged, hash, nil
	}

	contacts, err := mirrorContacts(remote, mgr.AllianceID)
	if err != nil {
		return ManagerUnknownError, "", err
	}
	if err := e.store.ReplaceContacts(ctx, models.ManagerOwner(mgr.AllianceID), contacts, hash); err != nil {
		return ManagerUnknownError, "", fmt.Errorf("failed to store alliance contacts: %w", err)
	}

	metrics.RecordContactsWritten("mirror", len(contacts))
	metrics.SetManagerContacts(mgr.AllianceID, len(contacts))
	e.registerEntities(ctx, contacts)

	logging.Ctx(ctx).Info().
		Int64("alliance_id", mgr.AllianceID).
		Int("contacts", len(contacts)).
		Str("version_hash", hash).
		Msg("Stored alliance contacts")
	return ManagerChanged, hash, nil
}

// mirrorContacts deduplicates the fetched list by contact id (last one wins)
// and sets the alliance itself at maximum standing.
func mirrorContacts(remote []esimodel.Contact, allianceID int64) ([]models.Contact, error) {
	order := make([]int64, 0, len(remote)+1)
	byID := make(map[int64]models.Contact, len(remote)+1)
	put := func(c models.Contact) {
		if _, seen := byID[c.EntityID]; !seen {
			order = append(order, c.EntityID)
		}
		byID[c.EntityID] = c
	}

	for _, rc := range remote {
		kind, err := models.ParseEntityKind(rc.ContactType)
		if err != nil {
			return nil, fmt.Errorf("contact %d: %w", rc.ContactID, err)
		}
		put(models.Contact{EntityID: rc.ContactID, Kind: kind, Standing: rc.Standing})
	}
	put(models.Contact{EntityID: allianceID, Kind: models.KindAlliance, Standing: models.StandingMax})

	out := make([]models.Contact, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out, nil
}

// registerEntities records contact entities in the directory, best effort.
func (e *Engine) registerEntities(ctx context.Context, contacts []models.Contact) {
	if e.directory == nil {
		return
	}
	entities := make([]models.Entity, 0, len(contacts))
	for _, c := range contacts {
		entities = append(entities, models.Entity{ID: c.EntityID, Kind: c.Kind})
	}
	if err := e.directory.Register(ctx, entities); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to register contact entities")
	}
}

func (e *Engine) reportManagerSync(ctx context.Context, userID, allianceID int64, success bool) {
	count := 0
	if success {
		n, err := e.store.CountContacts(ctx, models.ManagerOwner(allianceID))
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int64("alliance_id", allianceID).Msg("Failed to count alliance contacts for report")
		}
		count = n
	}
	name := e.entityName(ctx, allianceID, models.KindAlliance)
	e.notify(ctx, managerReportNotification(userID, name, success, count))
}

// dispatchStaleFollowers enqueues a follower sync for every follower of
// allianceID that does not hold version yet.
func (e *Engine) dispatchStaleFollowers(ctx context.Context, allianceID int64, version string) error {
	followers, err := e.store.SyncedCharacters(ctx, database.SyncedCharacterFilter{
		ManagerID: allianceID,
		StaleFor:  version,
	})
	if err != nil {
		return fmt.Errorf("failed to list followers of %d: %w", allianceID, err)
	}
	if e.dispatcher == nil || len(followers) == 0 {
		return nil
	}

	var errs []error
	for _, f := range followers {
		task := CharacterSyncTask{CharacterID: f.CharacterID, ManagerID: allianceID}
		if err := e.dispatcher.DispatchCharacterSync(ctx, task); err != nil {
			errs = append(errs, fmt.Errorf("character %d: %w", f.CharacterID, err))
		}
	}
	logging.Ctx(ctx).Debug().
		Int64("alliance_id", allianceID).
		Int("followers", len(followers)).
		Int("failed", len(errs)).
		Msg("Dispatched follower syncs")
	return errors.Join(errs...)
}
