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

	"github.com/tomtom215/standingsync/internal/logging"
)

// ErrESIOffline is returned when a cycle is skipped because ESI is down.
var ErrESIOffline = errors.New("ESI is offline")

// nameRefreshBatch bounds name resolution per regular cycle.
const nameRefreshBatch = 1000

// Scheduler turns periodic ticks into dispatched units of work.
type Scheduler struct {
	store      Store
	dispatcher Dispatcher
	wars       *WarRegistry
	warsAPI    WarsAPI
	status     StatusAPI
	directory  *Directory
	checkESI   bool
	now        func() time.Time
}

// SchedulerDeps are the collaborators of a Scheduler. Status and Directory
// are optional.
type SchedulerDeps struct {
	Store      Store
	Dispatcher Dispatcher
	Wars       *WarRegistry
	WarsAPI    WarsAPI
	Status     StatusAPI
	Directory  *Directory
}

// NewScheduler creates a scheduler. checkESI enables the ESI status gate.
func NewScheduler(deps SchedulerDeps, checkESI bool) *Scheduler {
	return &Scheduler{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		wars:       deps.Wars,
		warsAPI:    deps.WarsAPI,
		status:     deps.Status,
		directory:  deps.Directory,
		checkESI:   checkESI && deps.Status != nil,
		now:        time.Now,
	}
}

// RunRegularSync dispatches one manager sync per alliance and returns how
// many were dispatched.
func (s *Scheduler) RunRegularSync(ctx context.Context) (int, error) {
	if s.checkESI && !s.status.IsOnline(ctx) {
		logging.Ctx(ctx).Warn().Msg("ESI is offline, skipping regular sync")
		return 0, ErrESIOffline
	}

	managers, err := s.store.Managers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list managers: %w", err)
	}

	var errs []error
	dispatched := 0
	for _, m := range managers {
		if err := s.dispatcher.DispatchManagerSync(ctx, ManagerSyncTask{AllianceID: m.AllianceID}); err != nil {
			errs = append(errs, fmt.Errorf("alliance %d: %w", m.AllianceID, err))
			continue
		}
		dispatched++
	}

	if s.directory != nil {
		if n, err := s.directory.RefreshNames(ctx, nameRefreshBatch); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to refresh entity names")
		} else if n > 0 {
			logging.Ctx(ctx).Debug().Int("named", n).Msg("Resolved entity names")
		}
	}

	logging.Ctx(ctx).Info().Int("managers", dispatched).Msg("Dispatched regular sync")
	return dispatched, errors.Join(errs...)
}

// RunWarSweep dispatches a refresh for every war ESI lists that is not known
// to be finished, and returns how many were dispatched.
func (s *Scheduler) RunWarSweep(ctx context.Context) (int, error) {
	if s.checkESI && !s.status.IsOnline(ctx) {
		logging.Ctx(ctx).Warn().Msg("ESI is offline, skipping war sweep")
		return 0, ErrESIOffline
	}

	remote, err := s.warsAPI.WarIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list wars: %w", err)
	}
	ids, err := s.wars.StaleWarIDs(ctx, remote, s.now())
	if err != nil {
		return 0, err
	}

	var errs []error
	dispatched := 0
	for _, id := range ids {
		if err := s.dispatcher.DispatchWarRefresh(ctx, WarRefreshTask{WarID: id}); err != nil {
			errs = append(errs, fmt.Errorf("war %d: %w", id, err))
			continue
		}
		dispatched++
	}
	logging.Ctx(ctx).Info().Int("listed", len(remote)).Int("wars", dispatched).Msg("Dispatched war refresh")
	return dispatched, errors.Join(errs...)
}
