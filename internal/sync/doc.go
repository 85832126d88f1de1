// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

/*
Package sync is the standings synchronization engine.

An alliance's contact list (the mirror) is fetched by its leadership character
and stored locally together with a version hash. Every follower character
registered with that alliance then converges its personal contact list to the
mirror, optionally augmented with the alliance's war targets.

Components:
  - Directory: entity id to kind/name resolution, cached over the store
  - WarRegistry: active and finished wars, war target queries, war refresh
  - EffectiveStanding: character > corporation > alliance precedence
  - BuildTargetSet: mirror plus war targets under a TargetPolicy
  - Engine.SyncManager: source sync (fetch, fingerprint, replace, fan-out)
  - Engine.SyncCharacter: follower sync (checks, diff, chunked apply)
  - Engine.RefreshWar: war refresh unit used by the war sweep
  - Scheduler: periodic triggers for manager syncs and the war sweep
  - Registrar: registration of managers and followers

Outcomes:
Each sync unit ends in exactly one outcome (ManagerOutcome, CharacterOutcome)
which maps to a persisted models.SyncError. Only unknown errors are returned
to the caller, so the dispatch layer retries exactly those.

Concurrency:
Units are independent and idempotent. No lock is held across contact
replacement; the store transaction that swaps an owner's contacts and version
hash is the only guard. Followers re-read the manager's live version hash at
the start of their unit.
*/
package sync
