// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/vibecatalog/internal/api"
	"github.com/tomtom215/vibecatalog/internal/cache"
	"github.com/tomtom215/vibecatalog/internal/config"
	"github.com/tomtom215/vibecatalog/internal/discovery"
	"github.com/tomtom215/vibecatalog/internal/embedding"
	"github.com/tomtom215/vibecatalog/internal/events"
	"github.com/tomtom215/vibecatalog/internal/ingest"
	"github.com/tomtom215/vibecatalog/internal/logging"
	"github.com/tomtom215/vibecatalog/internal/search"
	"github.com/tomtom215/vibecatalog/internal/store"
	"github.com/tomtom215/vibecatalog/internal/supervisor"
	"github.com/tomtom215/vibecatalog/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Vibecatalog exited with error")
	}
}

//nolint:gocyclo // sequential wiring
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: os.Stderr,
	})
	logger := logging.Logger()
	logging.Info().
		Int("sources", len(cfg.Sources)).
		Str("embedding_model", cfg.Embedding.Model).
		Str("index_path", cfg.Index.Path).
		Str("staleness_policy", cfg.Index.StalenessPolicy).
		Msg("Starting Vibecatalog")

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open badger store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing badger store")
		}
	}()

	reader, err := ingest.NewDuckDBReader()
	if err != nil {
		return fmt.Errorf("open duckdb reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing duckdb reader")
		}
	}()

	mergePolicy, err := ingest.ParseMergePolicy(cfg.Ingest.MergePolicy)
	if err != nil {
		return err
	}
	pipeline := ingest.NewPipeline(reader, mergePolicy, cfg.Ingest.RowLimit, logger)

	embedders := newEmbedders(cfg.Embedding, db, logger)

	staleness, err := embedding.ParseStalenessPolicy(cfg.Index.StalenessPolicy)
	if err != nil {
		return err
	}
	resolver := embedding.NewResolver(embedders.Index, cfg.Index.Path, staleness, cfg.Embedding.BuildWorkers, logger)

	engine := search.NewEngine(embedders.Query, search.Config{
		CandidateLimit:      cfg.Search.CandidateLimit,
		DefaultPageSize:     cfg.Search.DefaultPageSize,
		TrendingPoolSize:    cfg.Search.TrendingPoolSize,
		TrendingLimit:       cfg.Search.TrendingLimit,
		AutocompleteScan:    cfg.Search.AutocompleteScan,
		AutocompletePerType: cfg.Search.AutocompletePerType,
	}, logger)

	bus, err := events.NewBus(events.DefaultConfig(), logging.NewWatermillLogger())
	if err != nil {
		return fmt.Errorf("create event bus: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	responses := cache.NewSearchCache(cfg.Enrich.CacheCapacity, cfg.Enrich.CacheTTL)
	bus.OnReloaded("clear-response-cache", events.ClearOnReload(responses))
	bus.OnDiscovered("persist-discovered-metadata", events.PersistDiscovered(db))

	enricher := newEnricher(cfg, bus, logger)

	svc := discovery.NewService(discovery.Deps{
		Consolidator: pipeline,
		Sources:      ingest.SourcesFromConfig(cfg.Sources),
		Resolver:     resolver,
		Artwork:      db,
		Engine:       engine,
		Enricher:     enricher,
		Cache:        responses,
		Publisher:    bus,
		Logger:       logger,
	})

	handler := api.NewHandler(svc, api.HandlerConfig{
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
		TrendingLimit:   cfg.Search.TrendingLimit,
		ReloadTimeout:   cfg.Reload.Timeout,
	})
	mw := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		AdminToken:         cfg.Security.AdminToken,
	})
	if cfg.Security.AdminToken == "" {
		logging.Warn().Msg("ADMIN_TOKEN is empty; POST /api/v1/admin/reload is unauthenticated")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler, mw).SetupChi(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + cfg.Enrich.ProviderTimeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddCatalogService(services.NewReloadService(svc, services.ReloadServiceConfig{
		Interval: cfg.Reload.Interval,
		Timeout:  cfg.Reload.Timeout,
	}, logger))
	tree.AddEventService(services.NewEventBusService(bus))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Supervisor tree starting")
	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
			logging.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
		}
		return fmt.Errorf("supervisor tree: %w", err)
	}
	logging.Info().Msg("Vibecatalog stopped")
	return nil
}
