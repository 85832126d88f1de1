// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

/*
Package supervisor runs the long-lived parts of standingsync under a suture v4
supervision tree.

# Overview

	RootSupervisor ("standingsync")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── EmbeddedNATSService (dispatch.transport=nats with embedded server)
	│   └── RouterService (task consumers)
	├── SchedulerSupervisor ("scheduler-layer")
	│   ├── TickerService "regular-sync"
	│   ├── TickerService "war-sweep"
	│   └── TickerService "audit-cleanup" (audit log enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently. A router crash loop puts the
messaging layer into backoff without touching the HTTP server.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewRouterService(newRouter))
	tree.AddSchedulerService(services.NewTickerService("regular-sync", time.Hour, scheduler.RunRegularSync))
	tree.Add(supervisor.LayerAPI, services.NewHTTPServerService(server, server.Addr, 10*time.Second))

	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    log.Error().Err(err).Msg("Supervisor stopped")
	}

# Service Contract

Services implement suture.Service. Returning an error restarts the service
subject to the failure threshold; returning after ctx is canceled ends it.

# Logging and Metrics

Supervisor events are logged through sutureslog into the zerolog-backed slog
handler from internal/logging. Every service termination also increments
supervisor_service_failures_total.

DuckDB is not supervised. It is an embedded library owned by main.
*/
package supervisor
