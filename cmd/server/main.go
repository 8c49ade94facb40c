// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/rewound/internal/anonymize"
	"github.com/tomtom215/rewound/internal/api"
	"github.com/tomtom215/rewound/internal/cache"
	"github.com/tomtom215/rewound/internal/config"
	"github.com/tomtom215/rewound/internal/database"
	"github.com/tomtom215/rewound/internal/events"
	"github.com/tomtom215/rewound/internal/ingest"
	"github.com/tomtom215/rewound/internal/logging"
	"github.com/tomtom215/rewound/internal/share"
	"github.com/tomtom215/rewound/internal/stats"
	"github.com/tomtom215/rewound/internal/supervisor"
	"github.com/tomtom215/rewound/internal/supervisor/services"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (default: search standard locations)")
	flag.Parse()

	// Load configuration first to get logging settings
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Rewound with supervisor tree")

	if cfg.Tautulli.Enabled {
		logging.Info().
			Str("tautulli_url", cfg.Tautulli.URL).
			Str("db_path", cfg.Database.Path).
			Str("cache_path", cfg.Cache.Path).
			Msg("Configuration loaded")
	} else {
		logging.Info().
			Bool("tautulli_enabled", false).
			Str("db_path", cfg.Database.Path).
			Str("cache_path", cfg.Cache.Path).
			Msg("Configuration loaded (serving already-synced history only)")
	}

	// DuckDB event log; the schema is created on open
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// Badger cache for computed reports
	statsCache, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		// Close database before fatal exit to ensure the defer runs
		if closeErr := db.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing database")
		}
		logging.Fatal().Err(err).Msg("Failed to open stats cache")
	}
	defer func() {
		if err := statsCache.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing stats cache")
		}
	}()

	// Event bus: in-process channels by default, NATS JetStream when
	// built with -tags nats and enabled in config
	bus, err := newSyncBus(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create event bus")
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	mode, err := anonymize.ParseMode(cfg.Anonymize.DefaultMode)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid anonymize mode")
	}
	anonymizer, err := anonymize.New(mode, cfg.Anonymize.Salt)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create anonymizer")
	}

	engine := stats.NewEngine(db, statsCache, anonymizer, stats.Config{
		TopN:     cfg.Stats.TopN,
		CacheTTL: cfg.Stats.CacheTTL,
	})

	issuer, err := share.NewTokenIssuer(cfg.Share.Secret)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create share token issuer")
	}
	shareSvc := share.NewService(db, issuer, share.Config{
		DefaultTTL: cfg.Share.DefaultTTL,
		MaxTTL:     cfg.Share.MaxTTL,
	})

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tautulli ingest is optional; without it Rewound serves whatever
	// the event log already contains
	var historySource ingest.HistorySource
	var syncSvc *ingest.Service
	if cfg.Tautulli.Enabled {
		breaker := ingest.NewBreakerClient(&cfg.Tautulli)
		if err := breaker.Ping(ctx); err != nil {
			logging.Warn().Err(err).Msg("Failed to connect to Tautulli (will retry)")
		} else {
			logging.Info().Msg("Connected to Tautulli successfully")
		}
		historySource = breaker

		syncSvc = ingest.NewService(breaker, db, &cfg.Sync)
		syncSvc.SetOnSyncCompleted(func(added int, duration time.Duration) {
			event := events.NewSyncCompletedEvent("tautulli", added)
			if err := bus.PublishSyncCompleted(event); err != nil {
				logging.Warn().Err(err).Msg("Failed to publish sync completion event")
			}
		})
	} else {
		logging.Info().Msg("Tautulli integration disabled")
	}

	// Cached reports go stale when a sync lands new records
	if err := bus.SubscribeSyncCompleted(ctx, func(event *events.SyncCompletedEvent) {
		if event.RecordsAdded == 0 {
			return
		}
		if err := statsCache.InvalidateAll(ctx); err != nil {
			logging.Warn().Err(err).Msg("Failed to invalidate stats cache after sync")
			return
		}
		logging.Info().
			Str("source", event.Source).
			Int("records_added", event.RecordsAdded).
			Msg("Stats cache invalidated after sync")
	}); err != nil {
		logging.Fatal().Err(err).Msg("Failed to subscribe to sync events")
	}

	handler := api.NewHandler(db, engine, anonymizer, shareSvc, syncSvc, historySource, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Supervisor tree; zerolog bridges to slog for the suture event hook
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Data layer services
	tree.AddDataService(services.NewCacheJanitorService(statsCache, cfg.Cache.GCInterval))
	tree.AddDataService(services.NewShareJanitorService(shareSvc, 24*time.Hour))

	// Ingest layer services
	if syncSvc != nil {
		tree.AddIngestService(syncSvc)
		logging.Info().Dur("interval", cfg.Sync.Interval).Msg("Sync service added to supervisor tree")
	}

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for the supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Rewound stopped gracefully")
}
