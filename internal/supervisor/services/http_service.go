// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/tomtom215/standingsync/internal/logging"
)

const defaultDrainTimeout = 10 * time.Second

// APIServer is the part of *http.Server the service drives.
type APIServer interface {
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServerService binds addr on every start, serves the API until the
// context ends and then drains in-flight requests for up to drainTimeout.
type HTTPServerService struct {
	server       APIServer
	addr         string
	drainTimeout time.Duration
	listen       func(network, addr string) (net.Listener, error)
}

// NewHTTPServerService wraps server. A non-positive drainTimeout means 10s.
func NewHTTPServerService(server APIServer, addr string, drainTimeout time.Duration) *HTTPServerService {
	if drainTimeout <= 0 {
		drainTimeout = defaultDrainTimeout
	}
	return &HTTPServerService{
		server:       server,
		addr:         addr,
		drainTimeout: drainTimeout,
		listen:       net.Listen,
	}
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	ln, err := h.listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", h.addr, err)
	}
	log := logging.WithComponent(h.String())
	log.Info().Str("addr", ln.Addr().String()).Msg("API server listening")

	done := make(chan error, 1)
	go func() {
		// Serve closes ln when it returns.
		done <- h.server.Serve(ln)
	}()

	select {
	case err := <-done:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve API: %w", err)
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), h.drainTimeout)
	defer cancel()
	if err := h.server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("drain API server: %w", err)
	}
	<-done
	log.Info().Msg("API server drained")
	return ctx.Err()
}

func (h *HTTPServerService) String() string {
	return "api-server"
}
