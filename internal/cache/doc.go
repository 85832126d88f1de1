// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

// Package cache provides a typed, size-bounded in-process cache with a
// fixed TTL per entry, backed by ristretto.
//
// The entity directory keeps resolved entities here so repeated lookups of
// the same contact or war participant during a sync run skip the database,
// and the permission checker keeps Casbin decisions for a minute.
package cache
