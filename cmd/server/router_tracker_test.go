// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package main

import (
	"context"
	"errors"
	"testing"
)

type stubRouter struct {
	running bool
}

func (r *stubRouter) Run(context.Context) error { return nil }
func (r *stubRouter) Close() error              { return nil }
func (r *stubRouter) IsRunning() bool           { return r.running }

func TestRouterTrackerFollowsLatestRouter(t *testing.T) {
	tracker := &routerTracker{}
	if tracker.Running() {
		t.Fatal("Running() = true before any router was built")
	}

	first := &stubRouter{running: true}
	second := &stubRouter{}
	built := []*stubRouter{first, second}
	factory := tracker.Factory(func() (trackedRouter, error) {
		r := built[0]
		built = built[1:]
		return r, nil
	})

	if _, err := factory(); err != nil {
		t.Fatalf("factory() error = %v", err)
	}
	if !tracker.Running() {
		t.Error("Running() = false with a running router")
	}

	if _, err := factory(); err != nil {
		t.Fatalf("factory() error = %v", err)
	}
	if tracker.Running() {
		t.Error("Running() = true although the latest router is stopped")
	}
}

func TestRouterTrackerKeepsPreviousOnError(t *testing.T) {
	tracker := &routerTracker{}
	wantErr := errors.New("subscriber closed")

	ok := tracker.Factory(func() (trackedRouter, error) { return &stubRouter{running: true}, nil })
	if _, err := ok(); err != nil {
		t.Fatalf("factory() error = %v", err)
	}

	failing := tracker.Factory(func() (trackedRouter, error) { return nil, wantErr })
	r, err := failing()
	if !errors.Is(err, wantErr) {
		t.Errorf("factory() error = %v, want %v", err, wantErr)
	}
	if r != nil {
		t.Errorf("factory() router = %v, want nil", r)
	}
	if !tracker.Running() {
		t.Error("a failed build must not replace the current router")
	}
}
