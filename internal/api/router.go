// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/standingsync/internal/config"
)

// RouterConfig holds the HTTP policy of the router.
type RouterConfig struct {
	APIToken string

	// RateLimitRequests per RateLimitWindow per client IP on /api/v1.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// SyncRateLimit applies to sync triggers on top of the general limit.
	SyncRateLimit int
}

// RouterConfigFromServer builds the router policy from cfg. Sync triggers
// get a tenth of the general limit, at least one.
func RouterConfigFromServer(cfg *config.ServerConfig) RouterConfig {
	return RouterConfig{
		APIToken:          cfg.APIToken,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		SyncRateLimit:     max(cfg.RateLimitRequests/10, 1),
	}
}

// NewRouter returns the chi handler for every route.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.Live)
	r.Get("/readyz", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())
		r.Use(RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Use(BearerToken(cfg.APIToken))

		syncLimit := RateLimit(cfg.SyncRateLimit, cfg.RateLimitWindow)

		r.Route("/managers", func(r chi.Router) {
			r.Get("/", h.ListManagers)
			r.Post("/", h.RegisterManager)
			r.Get("/{allianceID}", h.GetManager)
			r.With(syncLimit).Post("/{allianceID}/sync", h.SyncManager)
		})

		r.Route("/characters", func(r chi.Router) {
			r.Post("/", h.ActivateCharacter)
			r.Get("/{characterID}", h.GetCharacter)
			r.Delete("/{characterID}", h.RemoveCharacter)
			r.With(syncLimit).Post("/{characterID}/sync", h.SyncCharacter)
		})

		r.Get("/audit", h.ListAuditEvents)
	})

	return r
}
