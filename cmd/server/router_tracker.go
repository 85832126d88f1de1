// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package main

import (
	"sync"

	"github.com/tomtom215/standingsync/internal/supervisor/services"
)

// trackedRouter is a task router whose liveness feeds the readiness probe.
type trackedRouter interface {
	services.TaskRouter
	IsRunning() bool
}

// routerTracker remembers the router built by the latest supervisor run.
type routerTracker struct {
	mu      sync.RWMutex
	current trackedRouter
}

// Factory wraps build so every router it creates becomes the current one.
func (t *routerTracker) Factory(build func() (trackedRouter, error)) services.RouterFactory {
	return func() (services.TaskRouter, error) {
		r, err := build()
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		t.current = r
		t.mu.Unlock()
		return r, nil
	}
}

// Running reports whether the current router is processing tasks.
func (t *routerTracker) Running() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current != nil && t.current.IsRunning()
}
