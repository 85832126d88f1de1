// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package esi

import (
	"context"
	"net/http"

	"github.com/tomtom215/standingsync/internal/logging"
	esimodel "github.com/tomtom215/standingsync/internal/models/esi"
)

// Status returns the Tranquility server status.
func (c *Client) Status(ctx context.Context) (*esimodel.ServerStatus, error) {
	status, err := getJSON[esimodel.ServerStatus](ctx, c, request{
		method:   http.MethodGet,
		path:     "/status/",
		endpoint: "/status/",
	})
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// IsOnline reports whether ESI is reachable and not in VIP mode.
func (c *Client) IsOnline(ctx context.Context) bool {
	status, err := c.Status(ctx)
	if err != nil {
		logging.Ctx(ctx).Info().Err(err).Msg("ESI status check failed, treating as offline")
		return false
	}
	if status.VIP != nil && *status.VIP {
		logging.Ctx(ctx).Info().Msg("ESI is in VIP mode, treating as offline")
		return false
	}
	return true
}
