// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/standingsync/internal/api"
	"github.com/tomtom215/standingsync/internal/audit"
	"github.com/tomtom215/standingsync/internal/auth"
	"github.com/tomtom215/standingsync/internal/config"
	"github.com/tomtom215/standingsync/internal/database"
	"github.com/tomtom215/standingsync/internal/dispatch"
	"github.com/tomtom215/standingsync/internal/esi"
	"github.com/tomtom215/standingsync/internal/logging"
	"github.com/tomtom215/standingsync/internal/notify"
	"github.com/tomtom215/standingsync/internal/supervisor"
	"github.com/tomtom215/standingsync/internal/supervisor/services"
	standings "github.com/tomtom215/standingsync/internal/sync"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Config not yet available, default logger
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("transport", cfg.Dispatch.Transport).
		Dur("sync_interval", cfg.Sync.Interval).
		Bool("add_war_targets", cfg.Sync.AddWarTargets).
		Msg("Starting standingsync with supervisor tree")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Standingsync stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // Sequential setup steps
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// ESI client, with ETag revalidation when the cache opens
	var cache *esi.ETagCache
	if cfg.ESI.CacheEnabled {
		cache, err = esi.OpenETagCache(cfg.ESI.CacheDir, cfg.ESI.CacheTTL)
		if err != nil {
			logging.Warn().Err(err).Msg("ETag cache unavailable, continuing without response caching")
			cache = nil
		} else {
			defer func() {
				if err := cache.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing ETag cache")
				}
			}()
			logging.Info().Str("dir", cfg.ESI.CacheDir).Msg("ETag cache opened")
		}
	}
	client := esi.New(&cfg.ESI, cache)

	tokenCipher, err := config.NewTokenCipher(cfg.Security.EncryptionSecret)
	if err != nil {
		return fmt.Errorf("initialize token encryption: %w", err)
	}
	tokens := auth.NewTokenSource(db, tokenCipher, &cfg.SSO)
	permissions, err := auth.NewPermissions(&cfg.Security)
	if err != nil {
		return fmt.Errorf("initialize permissions: %w", err)
	}
	notifier := notify.New(db)
	logging.Info().Msg("Token source and permissions initialized")

	var auditor *audit.Logger
	if cfg.Audit.Enabled {
		store := audit.NewDuckDBStore(db.Conn())
		if err := store.CreateTable(ctx); err != nil {
			return fmt.Errorf("initialize audit store: %w", err)
		}
		auditor = audit.NewLogger(store, audit.Config{
			RetentionDays: cfg.Audit.RetentionDays,
			LogToStdout:   cfg.Audit.LogToStdout,
		})
		defer func() {
			if err := auditor.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing audit logger")
			}
		}()
		logging.Info().Int("retention_days", cfg.Audit.RetentionDays).Msg("Audit log enabled")
	}

	// Task transport
	natsURL := cfg.NATS.URL
	var embedded *dispatch.EmbeddedServer
	if cfg.Dispatch.Transport == dispatch.TransportNATS && cfg.NATS.EmbeddedServer {
		embedded, err = dispatch.NewEmbeddedServer(&cfg.NATS)
		if err != nil {
			return fmt.Errorf("start embedded NATS server: %w", err)
		}
		natsURL = embedded.ClientURL()
		logging.Info().
			Str("url", natsURL).
			Bool("jetstream", embedded.JetStreamEnabled()).
			Msg("Embedded NATS server started")
	}

	adapter := logging.NewWatermillAdapter()
	transport, err := dispatch.NewTransport(ctx, cfg, natsURL, adapter)
	if err != nil {
		shutdownEmbedded(embedded, cfg.Dispatch.CloseTimeout)
		return fmt.Errorf("initialize dispatch transport: %w", err)
	}
	defer func() {
		if err := transport.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing dispatch transport")
		}
	}()
	publisher := dispatch.NewPublisher(transport.Publisher, cfg.Dispatch.Workers)
	defer func() {
		if err := publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing task publisher")
		}
	}()
	logging.Info().
		Str("transport", cfg.Dispatch.Transport).
		Int("shards", cfg.Dispatch.Workers).
		Msg("Dispatch transport initialized")

	// Sync engine
	directory, err := standings.NewDirectory(db, client)
	if err != nil {
		shutdownEmbedded(embedded, cfg.Dispatch.CloseTimeout)
		return err
	}
	wars := standings.NewWarRegistry(db, client, directory)
	deps := standings.Deps{
		Store:       db,
		Contacts:    client,
		Tokens:      tokens,
		Permissions: permissions,
		Notifier:    notifier,
		Dispatcher:  publisher,
		Wars:        wars,
		Directory:   directory,
	}
	settings := standings.SettingsFromConfig(&cfg.Sync)
	engine := standings.NewEngine(deps, settings)
	registrar := standings.NewRegistrar(deps, settings)
	scheduler := standings.NewScheduler(standings.SchedulerDeps{
		Store:      db,
		Dispatcher: publisher,
		Wars:       wars,
		WarsAPI:    client,
		Status:     client,
		Directory:  directory,
	}, cfg.Sync.CheckESIStatus)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		shutdownEmbedded(embedded, cfg.Dispatch.CloseTimeout)
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Messaging layer
	if embedded != nil {
		tree.AddMessagingService(services.NewEmbeddedNATSService(embedded, cfg.Dispatch.CloseTimeout))
	}
	routers := &routerTracker{}
	tree.AddMessagingService(services.NewRouterService(routers.Factory(func() (trackedRouter, error) {
		return dispatch.NewRouter(
			dispatch.RouterConfigFromDispatch(&cfg.Dispatch),
			transport.Subscriber,
			transport.Publisher,
			engine,
			adapter,
		)
	})))
	logging.Info().Msg("Task router added to supervisor tree")

	// Scheduler layer
	tree.AddSchedulerService(services.NewTickerService("regular-sync", cfg.Sync.Interval, scheduler.RunRegularSync))
	tree.AddSchedulerService(services.NewTickerService("war-sweep", cfg.Sync.WarRefreshInterval, scheduler.RunWarSweep))
	logging.Info().
		Dur("sync_interval", cfg.Sync.Interval).
		Dur("war_refresh_interval", cfg.Sync.WarRefreshInterval).
		Msg("Scheduler tickers added to supervisor tree")

	// API layer
	handlerDeps := api.HandlerDeps{
		Store:         db,
		Dispatcher:    publisher,
		Registrar:     registrar,
		RouterRunning: routers.Running,
	}
	if auditor != nil {
		handlerDeps.Audit = auditor
		tree.AddSchedulerService(services.NewTickerService("audit-cleanup", 24*time.Hour, auditor.Cleanup))
	}
	handler := api.NewHandler(handlerDeps)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler, api.RouterConfigFromServer(&cfg.Server)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("API server service added")

	// === START SUPERVISOR TREE ===

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if errors.Is(serveErr, context.Canceled) {
		serveErr = nil
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	return serveErr
}

// shutdownEmbedded stops an embedded server that never reached the tree.
func shutdownEmbedded(s *dispatch.EmbeddedServer, timeout time.Duration) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logging.Warn().Err(err).Msg("Embedded NATS server shutdown incomplete")
	}
}
