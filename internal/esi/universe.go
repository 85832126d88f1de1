// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package esi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	esimodel "github.com/tomtom215/standingsync/internal/models/esi"
)

// maxNamesPerCall is the ESI limit for POST /universe/names/.
const maxNamesPerCall = 1000

// UniverseNames resolves ids to names and categories. ESI fails the whole
// call when any id is unknown, so callers should pass ids they have seen in
// other ESI payloads.
func (c *Client) UniverseNames(ctx context.Context, ids []int64) ([]esimodel.UniverseName, error) {
	var out []esimodel.UniverseName
	for start := 0; start < len(ids); start += maxNamesPerCall {
		end := min(start+maxNamesPerCall, len(ids))
		resp, err := c.do(ctx, request{
			method:   http.MethodPost,
			path:     "/universe/names/",
			body:     ids[start:end],
			endpoint: "/universe/names/",
		})
		if err != nil {
			return nil, err
		}
		var names []esimodel.UniverseName
		if err := json.Unmarshal(resp.body, &names); err != nil {
			return nil, fmt.Errorf("failed to decode /universe/names/: %w", err)
		}
		out = append(out, names...)
	}
	return out, nil
}
