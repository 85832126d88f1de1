// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package esi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrUnavailable is wrapped by errors returned while the circuit is open.
var ErrUnavailable = errors.New("ESI is unavailable")

// maxErrorBodySize bounds how much of an error response body is kept.
const maxErrorBodySize = 64 * 1024

// HTTPError is a non-2xx ESI response.
type HTTPError struct {
	StatusCode int
	Method     string
	Endpoint   string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("ESI %s %s failed with status %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

// StatusCode returns the HTTP status of an *HTTPError in err's chain, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is an ESI 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsForbidden reports whether err is an ESI 401 or 403.
func IsForbidden(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// readBodyForError reads at most maxErrorBodySize bytes of an error body.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// isRetryableStatus reports statuses worth retrying after a delay.
func isRetryableStatus(code int) bool {
	switch code {
	case 420, http.StatusTooManyRequests,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
