// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/standingsync/internal/cache"
	"github.com/tomtom215/standingsync/internal/database"
	"github.com/tomtom215/standingsync/internal/logging"
	"github.com/tomtom215/standingsync/internal/models"
	esimodel "github.com/tomtom215/standingsync/internal/models/esi"
)

// ErrInvalidReference is returned for a reference without a usable id.
var ErrInvalidReference = errors.New("invalid entity reference")

const (
	directoryCacheSize = 10000
	directoryCacheTTL  = 30 * time.Minute
)

// Directory maps entity ids to their kind and name. Entities are created on
// first reference and never deleted; names are filled in best effort.
type Directory struct {
	store EntityStore
	names NamesAPI
	cache *cache.TTL[int64, models.Entity]
}

// NewDirectory creates a directory over store. names may be nil, in which
// case entities stay nameless.
func NewDirectory(store EntityStore, names NamesAPI) (*Directory, error) {
	c, err := cache.New[int64, models.Entity](directoryCacheSize, directoryCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create entity cache: %w", err)
	}
	return &Directory{store: store, names: names, cache: c}, nil
}

// Resolve upserts the referenced entity and returns it.
func (d *Directory) Resolve(ctx context.Context, ref models.EntityRef) (models.Entity, error) {
	if !ref.Valid() {
		return models.Entity{}, fmt.Errorf("%w: %v", ErrInvalidReference, ref)
	}
	if cached, ok := d.cache.Get(ref.ID); ok && cached.Kind == ref.Kind && cached.Name != "" {
		return cached, nil
	}

	if err := d.store.UpsertEntities(ctx, []models.Entity{{ID: ref.ID, Kind: ref.Kind}}); err != nil {
		return models.Entity{}, fmt.Errorf("failed to upsert entity %v: %w", ref, err)
	}
	entity, err := d.store.Entity(ctx, ref.ID)
	if err != nil {
		return models.Entity{}, fmt.Errorf("failed to read entity %v: %w", ref, err)
	}

	if entity.Name == "" && d.names != nil {
		if name, ok := d.lookupName(ctx, ref.ID); ok {
			entity.Name = name
			if err := d.store.UpsertEntities(ctx, []models.Entity{entity}); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Int64("entity_id", ref.ID).Msg("Failed to store entity name")
			}
		}
	}

	d.cache.Set(entity.ID, entity)
	return entity, nil
}

// ResolveParticipant resolves a war participant. Alliance ids win over
// corporation ids.
func (d *Directory) ResolveParticipant(ctx context.Context, p esimodel.WarParticipant) (models.Entity, error) {
	ref, err := p.Ref()
	if err != nil {
		return models.Entity{}, fmt.Errorf("%w: %w", ErrInvalidReference, err)
	}
	return d.Resolve(ctx, ref)
}

// Lookup returns a known entity without touching ESI.
func (d *Directory) Lookup(ctx context.Context, id int64) (models.Entity, bool, error) {
	if cached, ok := d.cache.Get(id); ok {
		return cached, true, nil
	}
	entity, err := d.store.Entity(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return models.Entity{}, false, nil
	}
	if err != nil {
		return models.Entity{}, false, err
	}
	d.cache.Set(id, entity)
	return entity, true, nil
}

// Register upserts entities seen in contact lists. Existing names are kept.
func (d *Directory) Register(ctx context.Context, entities []models.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	if err := d.store.UpsertEntities(ctx, entities); err != nil {
		return fmt.Errorf("failed to register %d entities: %w", len(entities), err)
	}
	for _, e := range entities {
		d.cache.Delete(e.ID)
	}
	return nil
}

// RefreshNames resolves names for up to limit nameless entities and returns
// how many were named.
func (d *Directory) RefreshNames(ctx context.Context, limit int) (int, error) {
	if d.names == nil {
		return 0, nil
	}
	ids, err := d.store.NamelessEntityIDs(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list nameless entities: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	names, err := d.names.UniverseNames(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve %d names: %w", len(ids), err)
	}

	named := make([]models.Entity, 0, len(names))
	for _, n := range names {
		kind, err := models.ParseEntityKind(n.Category)
		if err != nil || n.Name == "" {
			continue
		}
		named = append(named, models.Entity{ID: n.ID, Kind: kind, Name: n.Name})
	}
	if err := d.Register(ctx, named); err != nil {
		return 0, err
	}
	return len(named), nil
}

func (d *Directory) lookupName(ctx context.Context, id int64) (string, bool) {
	names, err := d.names.UniverseNames(ctx, []int64{id})
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Int64("entity_id", id).Msg("Name resolution failed, keeping entity nameless")
		return "", false
	}
	for _, n := range names {
		if n.ID == id && n.Name != "" {
			return n.Name, true
		}
	}
	return "", false
}
