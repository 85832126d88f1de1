// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

/*
Package services adapts standingsync components to suture.Service.

  - HTTPServerService: binds the API address and serves/drains an *http.Server
  - RouterService: builds and runs a task router, rebuilding it on restart
  - TickerService: runs a job on start and then every interval
  - EmbeddedNATSService: owns the embedded NATS server and fails when it stops

Every wrapper implements fmt.Stringer so supervisor logs name the service.
*/
package services
