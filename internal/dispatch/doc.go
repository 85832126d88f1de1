// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

/*
Package dispatch is the work queue between the scheduler and the sync engines.

Units of work (manager sync, character sync, war refresh) are JSON encoded
Watermill messages. Delivery is at least once; every unit is idempotent, so a
redelivered message only causes a redundant run.

# Topics

	standingsync.manager          one message per manager sync
	standingsync.character.<n>    character syncs, sharded by character id
	standingsync.war              one message per war refresh
	standingsync.poison           messages that failed after all retries

Character syncs are sharded so followers of one alliance are processed in
parallel while a single character is never synced twice at the same time.

# Transports

  - memory: Watermill gochannel, single process
  - nats: NATS JetStream through watermill-nats, optionally with an embedded
    server, all topics bound to one stream

# Router

The router applies, outermost first: panic recovery, exponential retry,
optional throttling and the poison queue. Handlers decode and validate the
task, attach a correlation id to the context logger and call the engine.
*/
package dispatch
