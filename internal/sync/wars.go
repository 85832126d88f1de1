// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package sync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/standingsync/internal/logging"
	"github.com/tomtom215/standingsync/internal/metrics"
	"github.com/tomtom215/standingsync/internal/models"
)

// WarRefreshResult is what a war refresh did with the war.
type WarRefreshResult string

const (
	WarSaved    WarRefreshResult = "saved"
	WarFinished WarRefreshResult = "finished"
)

// WarRegistry tracks wars and answers war target queries. It is the only
// writer of war rows.
type WarRegistry struct {
	store     WarStore
	api       WarsAPI
	directory *Directory
	now       func() time.Time
}

// NewWarRegistry creates a registry. api may be nil for read-only use.
func NewWarRegistry(store WarStore, api WarsAPI, directory *Directory) *WarRegistry {
	return &WarRegistry{store: store, api: api, directory: directory, now: time.Now}
}

// ActiveWars returns wars that started and have not finished at now.
func (r *WarRegistry) ActiveWars(ctx context.Context, now time.Time) ([]models.War, error) {
	return r.store.ActiveWars(ctx, now)
}

// FinishedWars returns wars whose finish time has passed at now.
func (r *WarRegistry) FinishedWars(ctx context.Context, now time.Time) ([]models.War, error) {
	return r.store.FinishedWars(ctx, now)
}

// WarTargets returns the entities entityID is at war with at now, across all
// active wars, ordered by id.
func (r *WarRegistry) WarTargets(ctx context.Context, entityID int64, now time.Time) ([]models.Entity, error) {
	wars, err := r.store.ActiveWars(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load active wars: %w", err)
	}

	targets := make(map[int64]models.Entity)
	for i := range wars {
		if !wars[i].IsActive(now) {
			continue
		}
		for _, t := range wars[i].Targets(entityID) {
			targets[t.ID] = t
		}
	}

	out := make([]models.Entity, 0, len(targets))
	for _, t := range targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Refresh fetches a war from ESI. A war that already finished is removed
// locally instead of stored; otherwise participants are resolved and the war
// is upserted with its ally set replaced.
func (r *WarRegistry) Refresh(ctx context.Context, warID int64) (WarRefreshResult, error) {
	remote, err := r.api.War(ctx, warID)
	if err != nil {
		metrics.RecordWarRefresh("error")
		return "", fmt.Errorf("failed to fetch war %d: %w", warID, err)
	}

	now := r.now()
	if remote.Finished != nil && !remote.Finished.After(now) {
		if err := r.store.DeleteWar(ctx, warID); err != nil {
			metrics.RecordWarRefresh("error")
			return "", err
		}
		metrics.RecordWarRefresh(string(WarFinished))
		logging.Ctx(ctx).Debug().Int64("war_id", warID).Time("finished", *remote.Finished).Msg("War already finished, not stored")
		return WarFinished, nil
	}

	aggressor, err := r.directory.ResolveParticipant(ctx, remote.Aggressor)
	if err != nil {
		metrics.RecordWarRefresh("error")
		return "", fmt.Errorf("war %d aggressor: %w", warID, err)
	}
	defender, err := r.directory.ResolveParticipant(ctx, remote.Defender)
	if err != nil {
		metrics.RecordWarRefresh("error")
		return "", fmt.Errorf("war %d defender: %w", warID, err)
	}
	allies := make([]models.Entity, 0, len(remote.Allies))
	for _, p := range remote.Allies {
		ally, err := r.directory.ResolveParticipant(ctx, p)
		if err != nil {
			metrics.RecordWarRefresh("error")
			return "", fmt.Errorf("war %d ally: %w", warID, err)
		}
		allies = append(allies, ally)
	}

	war := models.War{
		ID:              remote.ID,
		Aggressor:       aggressor,
		Defender:        defender,
		Allies:          allies,
		Declared:        remote.Declared,
		Started:         remote.Started,
		Finished:        remote.Finished,
		Retracted:       remote.Retracted,
		IsMutual:        remote.Mutual,
		IsOpenForAllies: remote.OpenForAllies,
	}
	if err := r.store.SaveWar(ctx, war); err != nil {
		metrics.RecordWarRefresh("error")
		return "", fmt.Errorf("failed to save war %d: %w", warID, err)
	}
	metrics.RecordWarRefresh(string(WarSaved))
	return WarSaved, nil
}

// StaleWarIDs returns the remote ids that still need a refresh: every id
// except wars already known to be finished locally.
func (r *WarRegistry) StaleWarIDs(ctx context.Context, remoteIDs []int64, now time.Time) ([]int64, error) {
	finished, err := r.store.FinishedWarIDs(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load finished wars: %w", err)
	}
	stale := make([]int64, 0, len(remoteIDs))
	for _, id := range remoteIDs {
		if _, done := finished[id]; !done {
			stale = append(stale, id)
		}
	}
	return stale, nil
}
