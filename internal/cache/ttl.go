// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package cache

import (
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// ErrInvalidSize is returned for a non-positive entry limit.
var ErrInvalidSize = errors.New("cache size must be positive")

// TTL holds up to a fixed number of entries, each for the same duration.
// Eviction beyond the limit follows ristretto's TinyLFU admission.
type TTL[K ristretto.Key, V any] struct {
	c   *ristretto.Cache[K, V]
	ttl time.Duration
}

// New creates a cache for maxEntries entries that expire after ttl.
func New[K ristretto.Key, V any](maxEntries int64, ttl time.Duration) (*TTL[K, V], error) {
	if maxEntries <= 0 {
		return nil, ErrInvalidSize
	}
	c, err := ristretto.NewCache(&ristretto.Config[K, V]{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
		Metrics:            true,
	})
	if err != nil {
		return nil, err
	}
	return &TTL[K, V]{c: c, ttl: ttl}, nil
}

// Get returns the live value stored for key.
func (t *TTL[K, V]) Get(key K) (V, bool) {
	return t.c.Get(key)
}

// Set stores value and waits until it is visible to Get. A set refused by
// the admission policy is not an error.
func (t *TTL[K, V]) Set(key K, value V) {
	t.c.SetWithTTL(key, value, 1, t.ttl)
	t.c.Wait()
}

func (t *TTL[K, V]) Delete(key K) {
	t.c.Del(key)
}

// Clear drops every entry.
func (t *TTL[K, V]) Clear() {
	t.c.Clear()
}

// Stats returns the hit and miss counters.
func (t *TTL[K, V]) Stats() (hits, misses uint64) {
	return t.c.Metrics.Hits(), t.c.Metrics.Misses()
}

// Close stops the background goroutines. The cache must not be used after.
func (t *TTL[K, V]) Close() {
	t.c.Close()
}
