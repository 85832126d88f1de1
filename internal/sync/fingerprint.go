// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package sync

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"fmt"
	"slices"
	"sort"

	"github.com/goccy/go-json"

	esimodel "github.com/tomtom215/standingsync/internal/models/esi"
)

// Fingerprint returns the version hash of a fetched contact list: the MD5
// hex digest of its JSON encoding after a stable sort by contact id. Page
// boundaries and ESI's ordering therefore do not change the hash.
func Fingerprint(contacts []esimodel.Contact) (string, error) {
	canonical := make([]esimodel.Contact, len(contacts))
	for i, c := range contacts {
		if len(c.LabelIDs) > 0 {
			c.LabelIDs = slices.Clone(c.LabelIDs)
			slices.Sort(c.LabelIDs)
		}
		canonical[i] = c
	}
	sort.SliceStable(canonical, func(i, j int) bool {
		return canonical[i].ContactID < canonical[j].ContactID
	})

	data, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("failed to encode contacts: %w", err)
	}
	sum := md5.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:]), nil
}
