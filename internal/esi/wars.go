// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package esi

import (
	"context"
	"fmt"

	esimodel "github.com/tomtom215/standingsync/internal/models/esi"
	"github.com/tomtom215/standingsync/internal/validation"
)

// WarIDs returns the ids of the most recent wars, newest first.
func (c *Client) WarIDs(ctx context.Context) ([]int64, error) {
	return getJSON[[]int64](ctx, c, request{path: "/wars/", endpoint: "/wars/"})
}

// War returns the details of one war.
func (c *Client) War(ctx context.Context, warID int64) (*esimodel.War, error) {
	req := request{path: fmt.Sprintf("/wars/%d/", warID), endpoint: "/wars/{war_id}/"}
	war, err := getJSON[esimodel.War](ctx, c, req)
	if err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(&war); verr != nil {
		return nil, fmt.Errorf("invalid payload from %s: %w", req.endpoint, verr)
	}
	return &war, nil
}
