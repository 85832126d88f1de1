// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package sync

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/tomtom215/standingsync/internal/database"
	"github.com/tomtom215/standingsync/internal/models"
	esimodel "github.com/tomtom215/standingsync/internal/models/esi"
)

// memStore is an in-memory Store, EntityStore and WarStore.
type memStore struct {
	managers     map[int64]models.SyncManager
	characters   map[int64]models.Character
	followers    map[int64]models.SyncedCharacter
	contacts     map[models.Owner][]models.Contact
	entities     map[int64]models.Entity
	wars         map[int64]models.War
	replaceCalls int
}

func newMemStore() *memStore {
	return &memStore{
		managers:   make(map[int64]models.SyncManager),
		characters: make(map[int64]models.Character),
		followers:  make(map[int64]models.SyncedCharacter),
		contacts:   make(map[models.Owner][]models.Contact),
		entities:   make(map[int64]models.Entity),
		wars:       make(map[int64]models.War),
	}
}

func (s *memStore) Manager(_ context.Context, allianceID int64) (models.SyncManager, error) {
	m, ok := s.managers[allianceID]
	if !ok {
		return models.SyncManager{}, database.ErrNotFound
	}
	return m, nil
}

func (s *memStore) Managers(_ context.Context) ([]models.SyncManager, error) {
	out := make([]models.SyncManager, 0, len(s.managers))
	for _, m := range s.managers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AllianceID < out[j].AllianceID })
	return out, nil
}

func (s *memStore) SaveManager(_ context.Context, allianceID, characterID int64) error {
	m := s.managers[allianceID]
	m.AllianceID = allianceID
	m.CharacterID = characterID
	s.managers[allianceID] = m
	return nil
}

func (s *memStore) RecordManagerStatus(_ context.Context, allianceID int64, lastError models.SyncError, at time.Time) error {
	m, ok := s.managers[allianceID]
	if !ok {
		return database.ErrNotFound
	}
	m.LastError = lastError
	m.LastSync = at
	s.managers[allianceID] = m
	return nil
}

func (s *memStore) Character(_ context.Context, characterID int64) (models.Character, error) {
	c, ok := s.characters[characterID]
	if !ok {
		return models.Character{}, database.ErrNotFound
	}
	return c, nil
}

func (s *memStore) SyncedCharacter(_ context.Context, characterID int64) (models.SyncedCharacter, error) {
	f, ok := s.followers[characterID]
	if !ok {
		return models.SyncedCharacter{}, database.ErrNotFound
	}
	return f, nil
}

func (s *memStore) SyncedCharacters(_ context.Context, filter database.SyncedCharacterFilter) ([]models.SyncedCharacter, error) {
	var out []models.SyncedCharacter
	for _, f := range s.followers {
		if filter.ManagerID != 0 && f.ManagerID != filter.ManagerID {
			continue
		}
		if filter.StaleFor != "" && f.VersionHash == filter.StaleFor {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CharacterID < out[j].CharacterID })
	return out, nil
}

func (s *memStore) SaveSyncedCharacter(_ context.Context, characterID, managerID int64) error {
	f, ok := s.followers[characterID]
	if !ok || f.ManagerID != managerID {
		f = models.SyncedCharacter{CharacterID: characterID, ManagerID: managerID}
	}
	s.followers[characterID] = f
	return nil
}

func (s *memStore) RecordCharacterStatus(_ context.Context, characterID int64, lastError models.SyncError, at time.Time) error {
	f, ok := s.followers[characterID]
	if !ok {
		return database.ErrNotFound
	}
	f.LastError = lastError
	f.LastSync = at
	s.followers[characterID] = f
	return nil
}

func (s *memStore) DeleteSyncedCharacter(_ context.Context, characterID int64) error {
	delete(s.followers, characterID)
	delete(s.contacts, models.CharacterOwner(characterID))
	return nil
}

func (s *memStore) Contacts(_ context.Context, owner models.Owner) ([]models.Contact, error) {
	return slices.Clone(s.contacts[owner]), nil
}

func (s *memStore) CountContacts(_ context.Context, owner models.Owner) (int, error) {
	return len(s.contacts[owner]), nil
}

func (s *memStore) ReplaceContacts(_ context.Context, owner models.Owner, contacts []models.Contact, versionHash string) error {
	s.replaceCalls++
	switch owner.Kind {
	case models.OwnerManager:
		m, ok := s.managers[owner.ID]
		if !ok {
			return database.ErrNotFound
		}
		m.VersionHash = versionHash
		s.managers[owner.ID] = m
	case models.OwnerCharacter:
		f, ok := s.followers[owner.ID]
		if !ok {
			return database.ErrNotFound
		}
		f.VersionHash = versionHash
		s.followers[owner.ID] = f
	}
	s.contacts[owner] = slices.Clone(contacts)
	return nil
}

func (s *memStore) UpsertEntities(_ context.Context, entities []models.Entity) error {
	for _, e := range entities {
		if existing, ok := s.entities[e.ID]; ok && e.Name == "" {
			e.Name = existing.Name
		}
		s.entities[e.ID] = e
	}
	return nil
}

func (s *memStore) Entity(_ context.Context, id int64) (models.Entity, error) {
	e, ok := s.entities[id]
	if !ok {
		return models.Entity{}, database.ErrNotFound
	}
	return e, nil
}

func (s *memStore) NamelessEntityIDs(_ context.Context, limit int) ([]int64, error) {
	var ids []int64
	for id, e := range s.entities {
		if e.Name == "" {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *memStore) SaveWar(_ context.Context, w models.War) error {
	s.wars[w.ID] = w
	return nil
}

func (s *memStore) DeleteWar(_ context.Context, warID int64) error {
	delete(s.wars, warID)
	return nil
}

func (s *memStore) ActiveWars(_ context.Context, now time.Time) ([]models.War, error) {
	var out []models.War
	for _, w := range s.wars {
		if w.IsActive(now) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *memStore) FinishedWars(_ context.Context, now time.Time) ([]models.War, error) {
	var out []models.War
	for _, w := range s.wars {
		if w.IsFinished(now) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *memStore) FinishedWarIDs(_ context.Context, now time.Time) (map[int64]struct{}, error) {
	ids := make(map[int64]struct{})
	for _, w := range s.wars {
		if w.IsFinished(now) {
			ids[w.ID] = struct{}{}
		}
	}
	return ids, nil
}

type writeCall struct {
	op       string
	ids      []int64
	standing float64
	labels   []int64
}

// fakeESI applies contact writes to its own state so repeated syncs see
// their own effects.
type fakeESI struct {
	alliance    map[int64][]esimodel.Contact
	characters  map[int64][]esimodel.Contact
	labels      map[int64][]esimodel.ContactLabel
	wars        map[int64]*esimodel.War
	names       map[int64]esimodel.UniverseName
	fetchErr    error
	writeErr    error
	writes      []writeCall
	allianceGet int
}

func newFakeESI() *fakeESI {
	return &fakeESI{
		alliance:   make(map[int64][]esimodel.Contact),
		characters: make(map[int64][]esimodel.Contact),
		labels:     make(map[int64][]esimodel.ContactLabel),
		wars:       make(map[int64]*esimodel.War),
		names:      make(map[int64]esimodel.UniverseName),
	}
}

func (f *fakeESI) AllianceContacts(_ context.Context, allianceID int64, _ string) ([]esimodel.Contact, error) {
	f.allianceGet++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return slices.Clone(f.alliance[allianceID]), nil
}

func (f *fakeESI) CharacterContacts(_ context.Context, characterID int64, _ string) ([]esimodel.Contact, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return slices.Clone(f.characters[characterID]), nil
}

func (f *fakeESI) CharacterContactLabels(_ context.Context, characterID int64, _ string) ([]esimodel.ContactLabel, error) {
	return f.labels[characterID], nil
}

func (f *fakeESI) AddContacts(_ context.Context, characterID int64, _ string, ids []int64, standing float64, labels []int64) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, writeCall{op: "add", ids: slices.Clone(ids), standing: standing, labels: labels})
	for _, id := range ids {
		f.characters[characterID] = append(f.characters[characterID], esimodel.Contact{
			ContactID: id, ContactType: "character", Standing: standing, LabelIDs: slices.Clone(labels),
		})
	}
	return nil
}

func (f *fakeESI) UpdateContacts(_ context.Context, characterID int64, _ string, ids []int64, standing float64, labels []int64) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, writeCall{op: "update", ids: slices.Clone(ids), standing: standing, labels: labels})
	list := f.characters[characterID]
	for i := range list {
		if slices.Contains(ids, list[i].ContactID) {
			list[i].Standing = standing
			list[i].LabelIDs = slices.Clone(labels)
		}
	}
	return nil
}

func (f *fakeESI) DeleteContacts(_ context.Context, characterID int64, _ string, ids []int64) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, writeCall{op: "delete", ids: slices.Clone(ids)})
	f.characters[characterID] = slices.DeleteFunc(f.characters[characterID], func(c esimodel.Contact) bool {
		return slices.Contains(ids, c.ContactID)
	})
	return nil
}

func (f *fakeESI) WarIDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(f.wars))
	for id := range f.wars {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (f *fakeESI) War(_ context.Context, warID int64) (*esimodel.War, error) {
	w, ok := f.wars[warID]
	if !ok {
		return nil, fmt.Errorf("war %d not found", warID)
	}
	return w, nil
}

func (f *fakeESI) UniverseNames(_ context.Context, ids []int64) ([]esimodel.UniverseName, error) {
	var out []esimodel.UniverseName
	for _, id := range ids {
		if n, ok := f.names[id]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// followerState returns a character's ESI contacts keyed by id.
func (f *fakeESI) followerState(characterID int64) map[int64]esimodel.Contact {
	m := make(map[int64]esimodel.Contact)
	for _, c := range f.characters[characterID] {
		m[c.ContactID] = c
	}
	return m
}

type fakeTokens struct {
	errs map[int64]error
}

func (f *fakeTokens) Token(_ context.Context, characterID int64, _ []string) (string, error) {
	if err := f.errs[characterID]; err != nil {
		return "", err
	}
	return fmt.Sprintf("token-%d", characterID), nil
}

type fakePerms struct {
	denied map[int64]bool
}

func (f *fakePerms) HasPermission(_ context.Context, userID int64, _ string) (bool, error) {
	return !f.denied[userID], nil
}

type fakeNotifier struct {
	sent []models.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n models.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

type fakeDispatcher struct {
	managers   []ManagerSyncTask
	characters []CharacterSyncTask
	wars       []WarRefreshTask
}

func (f *fakeDispatcher) DispatchManagerSync(_ context.Context, t ManagerSyncTask) error {
	f.managers = append(f.managers, t)
	return nil
}

func (f *fakeDispatcher) DispatchCharacterSync(_ context.Context, t CharacterSyncTask) error {
	f.characters = append(f.characters, t)
	return nil
}

func (f *fakeDispatcher) DispatchWarRefresh(_ context.Context, t WarRefreshTask) error {
	f.wars = append(f.wars, t)
	return nil
}

type fakeStatus struct{ online bool }

func (f fakeStatus) IsOnline(context.Context) bool { return f.online }

// Fixture ids.
const (
	testAllianceID  int64 = 3001
	testLeaderID    int64 = 1001
	testLeaderUser  int64 = 1
	testFollowerID  int64 = 1002
	testFollowerCID int64 = 2002
	testFollowerUID int64 = 2
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	store      *memStore
	esi        *fakeESI
	tokens     *fakeTokens
	perms      *fakePerms
	notifier   *fakeNotifier
	dispatcher *fakeDispatcher
	directory  *Directory
	wars       *WarRegistry
	engine     *Engine
}

// newHarness wires an engine with a leadership character for the test
// alliance and one follower whose corporation is blue with the alliance.
func newHarness(settings Settings) *harness {
	h := &harness{
		store:      newMemStore(),
		esi:        newFakeESI(),
		tokens:     &fakeTokens{errs: make(map[int64]error)},
		perms:      &fakePerms{denied: make(map[int64]bool)},
		notifier:   &fakeNotifier{},
		dispatcher: &fakeDispatcher{},
	}
	dir, err := NewDirectory(h.store, h.esi)
	if err != nil {
		panic(err)
	}
	h.directory = dir
	h.wars = NewWarRegistry(h.store, h.esi, h.directory)
	h.wars.now = func() time.Time { return testNow }
	h.engine = NewEngine(Deps{
		Store:       h.store,
		Contacts:    h.esi,
		Tokens:      h.tokens,
		Permissions: h.perms,
		Notifier:    h.notifier,
		Dispatcher:  h.dispatcher,
		Wars:        h.wars,
		Directory:   h.directory,
	}, settings)
	h.engine.now = func() time.Time { return testNow }

	h.store.characters[testLeaderID] = models.Character{
		ID: testLeaderID, Name: "Leader", CorporationID: 2001, AllianceID: testAllianceID, UserID: testLeaderUser,
	}
	h.store.characters[testFollowerID] = models.Character{
		ID: testFollowerID, Name: "Follower", CorporationID: testFollowerCID, UserID: testFollowerUID,
	}
	h.store.managers[testAllianceID] = models.SyncManager{AllianceID: testAllianceID, CharacterID: testLeaderID}
	h.store.followers[testFollowerID] = models.SyncedCharacter{CharacterID: testFollowerID, ManagerID: testAllianceID}
	return h
}

func defaultSettings() Settings {
	return Settings{
		MinStanding:         0.1,
		AddWarTargets:       true,
		ReplaceContacts:     true,
		WarTargetsLabelName: "WAR TARGETS",
		DeleteBatchSize:     20,
		WriteBatchSize:      100,
	}
}

func (h *harness) countWrites() int {
	return len(h.esi.writes)
}
