// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

/*
Package main is the entry point for the standingsync server.

Standingsync mirrors the contact list of an alliance onto the personal
contact lists of its members and blue allies. One character per alliance,
the sync manager, supplies the alliance contacts; every registered follower
character then receives those contacts as personal contacts, optionally
joined by the current war targets of the alliance.

# Application Architecture

The server runs under a Suture v4 supervision tree:

	RootSupervisor ("standingsync")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Embedded NATS server (optional)
	│   └── Task router (Watermill)
	├── SchedulerSupervisor ("scheduler-layer")
	│   ├── regular-sync ticker
	│   ├── war-sweep ticker
	│   └── audit-cleanup ticker (optional)
	└── APISupervisor ("api-layer")
	    └── HTTP server (chi)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB store for managers, followers, contacts and wars
 4. ESI client: rate limited, circuit broken, optional Badger ETag cache
 5. Auth: encrypted SSO token store and Casbin permissions
 6. Audit log: DuckDB audit_events table (optional)
 7. Dispatch: in-memory GoChannel or NATS JetStream transport
 8. Sync engine, registrar and scheduler
 9. Supervisor tree and HTTP API

# Configuration

	# Sync
	SYNC_INTERVAL=30m                      # regular manager sync
	WAR_REFRESH_INTERVAL=1h                # war sweep
	STANDINGSSYNC_CHAR_MIN_STANDING=0.1    # minimum standing for blue
	STANDINGSSYNC_ADD_WAR_TARGETS=false
	STANDINGSSYNC_REPLACE_CONTACTS=true

	# SSO
	EVE_CLIENT_ID=<client id>
	EVE_CLIENT_SECRET=<client secret>
	TOKEN_ENCRYPTION_SECRET=<32+ chars>    # refresh token encryption

	# Dispatch
	DISPATCH_TRANSPORT=memory              # memory or nats
	NATS_URL=nats://127.0.0.1:4222
	NATS_EMBEDDED=true

	# API
	HTTP_PORT=8740
	API_TOKEN=<token>                      # bearer token, empty disables

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the API
layer, the tickers and the task router; the transport, the ETag cache and
the database are closed afterwards.
*/
package main
