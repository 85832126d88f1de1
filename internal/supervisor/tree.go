// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/tomtom215/standingsync/internal/metrics"
)

// Layer groups services that fail and back off together.
type Layer int

const (
	// LayerMessaging holds the embedded NATS server and the task router.
	LayerMessaging Layer = iota
	// LayerScheduler holds the periodic sync, war sweep and cleanup tickers.
	LayerScheduler
	// LayerAPI holds the HTTP server.
	LayerAPI
)

var layerNames = [...]string{
	LayerMessaging: "messaging-layer",
	LayerScheduler: "scheduler-layer",
	LayerAPI:       "api-layer",
}

func (l Layer) String() string { return layerNames[l] }

// TreeConfig tunes restart behavior. Zero fields take DefaultTreeConfig.
type TreeConfig struct {
	// FailureThreshold is the failure count that puts a layer into backoff.
	FailureThreshold float64
	// FailureDecay is the failure half-life in seconds.
	FailureDecay float64
	// FailureBackoff is how long a layer waits once over the threshold.
	FailureBackoff time.Duration
	// ShutdownTimeout bounds how long a service may take to stop.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig mirrors suture's defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c TreeConfig) withDefaults() TreeConfig {
	d := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

// SupervisorTree is the root "standingsync" supervisor with one child
// supervisor per Layer. A layer that keeps failing backs off on its own, so
// the API stays up while the task router restarts.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers [len(layerNames)]*suture.Supervisor
	config TreeConfig
}

// NewSupervisorTree builds the tree. Supervisor events are logged through
// logger and service terminations are counted in metrics.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	config = config.withDefaults()

	logHook := (&sutureslog.Handler{Logger: logger}).MustHook()
	hook := func(e suture.Event) {
		if term, ok := e.(suture.EventServiceTerminate); ok {
			metrics.RecordServiceFailure(term.SupervisorName, term.ServiceName, term.Restarting)
		}
		logHook(e)
	}
	spec := suture.Spec{
		EventHook:        hook,
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	t := &SupervisorTree{root: suture.New("standingsync", spec), config: config}
	for l, name := range layerNames {
		t.layers[l] = suture.New(name, spec)
		t.root.Add(t.layers[l])
	}
	return t, nil
}

// Add places svc in layer.
func (t *SupervisorTree) Add(layer Layer, svc suture.Service) suture.ServiceToken {
	return t.layers[layer].Add(svc)
}

func (t *SupervisorTree) AddMessagingService(svc suture.Service) suture.ServiceToken {
	return t.Add(LayerMessaging, svc)
}

func (t *SupervisorTree) AddSchedulerService(svc suture.Service) suture.ServiceToken {
	return t.Add(LayerScheduler, svc)
}

func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.Add(LayerAPI, svc)
}

// ServeBackground runs the tree in a goroutine. The channel receives a
// single result once the tree stops and is never closed.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that missed the shutdown timeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
