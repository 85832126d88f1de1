// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package services

import (
	"context"
	"errors"
	"fmt"
)

// TaskRouter is the lifecycle of *dispatch.Router.
type TaskRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// RouterFactory builds a fresh router. A closed Watermill router cannot be
// run again, so every restart needs a new one.
type RouterFactory func() (TaskRouter, error)

// RouterService runs the task router under supervision.
type RouterService struct {
	newRouter RouterFactory
	name      string
}

// NewRouterService creates a router service using factory.
func NewRouterService(factory RouterFactory) *RouterService {
	return &RouterService{newRouter: factory, name: "task-router"}
}

// Serve implements suture.Service. A router that stops while ctx is still
// live is reported as a failure so suture restarts it.
func (s *RouterService) Serve(ctx context.Context) error {
	router, err := s.newRouter()
	if err != nil {
		return fmt.Errorf("create task router: %w", err)
	}

	runErr := router.Run(ctx)
	closeErr := router.Close()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runErr == nil {
		runErr = errors.New("task router stopped")
	}
	return errors.Join(runErr, closeErr)
}

// String implements fmt.Stringer.
func (s *RouterService) String() string {
	return s.name
}
