// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

var (
	httpSchemes = []string{"http", "https"}
	natsSchemes = []string{"nats", "tls", "ws", "wss"}
)

// validateURL checks that rawURL uses one of schemes and names a host.
// Paths are allowed, ESI carries its route version in the base URL. Query
// strings are not: the clients add their parameters per request.
func validateURL(field, rawURL string, schemes []string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if !slices.Contains(schemes, u.Scheme) {
		return fmt.Errorf("%s scheme must be one of %s, got %q", field, strings.Join(schemes, ", "), u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", field)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s must not contain query parameters, remove ?%s", field, u.RawQuery)
	}
	return nil
}
