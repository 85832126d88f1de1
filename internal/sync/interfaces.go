// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package sync

import (
	"context"
	"time"

	"github.com/tomtom215/standingsync/internal/database"
	"github.com/tomtom215/standingsync/internal/models"
	esimodel "github.com/tomtom215/standingsync/internal/models/esi"
)

// Store is the persistence the engines need. Implemented by *database.DB.
type Store interface {
	Manager(ctx context.Context, allianceID int64) (models.SyncManager, error)
	Managers(ctx context.Context) ([]models.SyncManager, error)
	SaveManager(ctx context.Context, allianceID, characterID int64) error
	RecordManagerStatus(ctx context.Context, allianceID int64, lastError models.SyncError, at time.Time) error

	Character(ctx context.Context, characterID int64) (models.Character, error)
	SyncedCharacter(ctx context.Context, characterID int64) (models.SyncedCharacter, error)
	SyncedCharacters(ctx context.Context, filter database.SyncedCharacterFilter) ([]models.SyncedCharacter, error)
	SaveSyncedCharacter(ctx context.Context, characterID, managerID int64) error
	RecordCharacterStatus(ctx context.Context, characterID int64, lastError models.SyncError, at time.Time) error
	DeleteSyncedCharacter(ctx context.Context, characterID int64) error

	Contacts(ctx context.Context, owner models.Owner) ([]models.Contact, error)
	CountContacts(ctx context.Context, owner models.Owner) (int, error)
	ReplaceContacts(ctx context.Context, owner models.Owner, contacts []models.Contact, versionHash string) error
}

// EntityStore persists entities for the Directory.
type EntityStore interface {
	UpsertEntities(ctx context.Context, entities []models.Entity) error
	Entity(ctx context.Context, id int64) (models.Entity, error)
	NamelessEntityIDs(ctx context.Context, limit int) ([]int64, error)
}

// WarStore persists wars for the WarRegistry.
type WarStore interface {
	SaveWar(ctx context.Context, w models.War) error
	DeleteWar(ctx context.Context, warID int64) error
	ActiveWars(ctx context.Context, now time.Time) ([]models.War, error)
	FinishedWars(ctx context.Context, now time.Time) ([]models.War, error)
	FinishedWarIDs(ctx context.Context, now time.Time) (map[int64]struct{}, error)
}

// ContactsAPI reads and writes contacts on ESI. Implemented by *esi.Client.
type ContactsAPI interface {
	AllianceContacts(ctx context.Context, allianceID int64, token string) ([]esimodel.Contact, error)
	CharacterContacts(ctx context.Context, characterID int64, token string) ([]esimodel.Contact, error)
	CharacterContactLabels(ctx context.Context, characterID int64, token string) ([]esimodel.ContactLabel, error)
	AddContacts(ctx context.Context, characterID int64, token string, contactIDs []int64, standing float64, labelIDs []int64) error
	UpdateContacts(ctx context.Context, characterID int64, token string, contactIDs []int64, standing float64, labelIDs []int64) error
	DeleteContacts(ctx context.Context, characterID int64, token string, contactIDs []int64) error
}

// WarsAPI reads wars from ESI.
type WarsAPI interface {
	WarIDs(ctx context.Context) ([]int64, error)
	War(ctx context.Context, warID int64) (*esimodel.War, error)
}

// NamesAPI resolves entity names on ESI.
type NamesAPI interface {
	UniverseNames(ctx context.Context, ids []int64) ([]esimodel.UniverseName, error)
}

// StatusAPI reports whether ESI is usable.
type StatusAPI interface {
	IsOnline(ctx context.Context) bool
}

// TokenProvider hands out access tokens. Failures wrap auth.ErrTokenInvalid
// or auth.ErrTokenExpired when the credential itself is the problem.
type TokenProvider interface {
	Token(ctx context.Context, characterID int64, scopes []string) (string, error)
}

// PermissionChecker answers capability grants for a user.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID int64, perm string) (bool, error)
}

// Notifier delivers a message to a user.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Dispatcher enqueues units of work. Delivery is at least once.
type Dispatcher interface {
	DispatchManagerSync(ctx context.Context, task ManagerSyncTask) error
	DispatchCharacterSync(ctx context.Context, task CharacterSyncTask) error
	DispatchWarRefresh(ctx context.Context, task WarRefreshTask) error
}
