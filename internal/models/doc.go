// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

/*
Package models defines the data structures shared by the store, the sync
engines and the ops API.

Key Components:

  - Entity / EntityRef: EVE characters, corporations, alliances and factions.
    EntityRef is the tagged reference built once at the ESI boundary.
  - Contact: one standing held by an owner (an alliance mirror or a synced
    character) towards an entity.
  - SyncManager: the alliance whose contact list is mirrored.
  - SyncedCharacter: a follower character receiving the mirror.
  - Character: affiliation chain of a registered character and its owner.
  - War: a war with its participants and lifecycle timestamps.
  - Token, Notification: credential and user inbox records.
  - SyncError: closed set of persisted sync outcomes with their status text.

ESI wire payloads live in the esi subpackage.
*/
package models
