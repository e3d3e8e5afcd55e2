// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

// Command server runs the Vitrine HTTP service: the movie-log webhook,
// the album chart aggregation API, and the cooking log.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcroft/vitrine/internal/api"
	"github.com/mcroft/vitrine/internal/charts"
	"github.com/mcroft/vitrine/internal/config"
	"github.com/mcroft/vitrine/internal/database"
	"github.com/mcroft/vitrine/internal/gate"
	"github.com/mcroft/vitrine/internal/ingest"
	"github.com/mcroft/vitrine/internal/lastfm"
	"github.com/mcroft/vitrine/internal/logging"
	"github.com/mcroft/vitrine/internal/metrics"
	"github.com/mcroft/vitrine/internal/supervisor"
	"github.com/mcroft/vitrine/internal/supervisor/services"
)

// version and commit are set at build time via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	metrics.SetAppInfo(version, commit)

	logging.Info().
		Str("version", version).
		Int("port", cfg.Server.Port).
		Msg("Starting Vitrine")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Database close failed")
		}
	}()

	access := gate.New(cfg.Webhook.Secret, cfg.Webhook.SecretHeader, cfg.Security.AllowedIPs)
	pipeline := ingest.NewPipeline(db)

	lastfmClient := lastfm.NewCircuitBreakerClient(&cfg.Lastfm)
	aggregator := charts.NewAggregator(lastfmClient, charts.NewAlbumCache(db))

	handler := api.NewHandler(db, pipeline, aggregator, access)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, supervisor.DefaultTreeConfig().ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	logging.Info().Msg("Shutdown complete")
	return nil
}
