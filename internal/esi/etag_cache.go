// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package esi

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const etagKeyPrefix = "etag:"

// cachedResponse is a GET response kept for If-None-Match revalidation.
type cachedResponse struct {
	ETag  string `json:"etag"`
	Pages int    `json:"pages"`
	Body  []byte `json:"body"`
}

// ETagCache stores ESI GET responses keyed by request URL.
type ETagCache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenETagCache opens a BadgerDB-backed cache in dir. An empty dir keeps
// the cache in memory.
func OpenETagCache(dir string, ttl time.Duration) (*ETagCache, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open ETag cache: %w", err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ETagCache{db: db, ttl: ttl}, nil
}

// Get returns the cached response for key. ok is false on a miss.
func (c *ETagCache) Get(key string) (entry cachedResponse, ok bool, err error) {
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(etagKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return cachedResponse{}, false, nil
	}
	if err != nil {
		return cachedResponse{}, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return entry, true, nil
}

// Set stores a response under key. Responses without an ETag are ignored.
func (c *ETagCache) Set(key string, entry cachedResponse) error {
	if entry.ETag == "" {
		return nil
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(etagKeyPrefix+key), data).WithTTL(c.ttl)
		return txn.SetEntry(e)
	})
}

// Close releases the underlying database.
func (c *ETagCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
