// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/shopsense/internal/api"
	"github.com/tomtom215/shopsense/internal/logging"
	"github.com/tomtom215/shopsense/internal/segment"
	"github.com/tomtom215/shopsense/internal/segment/storage"
	"github.com/tomtom215/shopsense/internal/supervisor"
	"github.com/tomtom215/shopsense/internal/supervisor/services"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
}

// serve runs the supervisor tree until ctx is canceled.
func serve(ctx context.Context, a *app) error {
	cfg := a.cfg
	logging.Info().Str("version", version).Msg("Starting ShopSense with supervisor tree")

	if cfg.Database.SeedDemoData {
		logging.Info().Msg("Demo data seeding enabled (SEED_DEMO_DATA=true)")
		if _, err := a.db.SeedDemoData(ctx, time.Now()); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	engine, err := a.engine()
	if err != nil {
		return fmt.Errorf("failed to initialize recommendation engine: %w", err)
	}

	classifier := segment.LoadClassifier(ctx, storage.OpenStore(cfg.Segment.ModelDir), a.db, nil, logging.Logger())

	handler := api.NewHandler(engine, classifier, a.db, version)
	router := api.NewRouter(handler, &api.RouterConfig{
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.Server.RateLimitReqs,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
	})

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	if cfg.Database.CheckpointInterval > 0 {
		tree.AddDataService(services.NewCheckpointService(a.db, cfg.Database.CheckpointInterval))
	}
	tree.AddAPIService(services.NewHTTPServerService(
		services.NewServer(&cfg.Server, router),
		cfg.Server.ShutdownTimeout,
	))

	logging.Info().
		Str("strategy", cfg.Recommend.Strategy).
		Bool("classifier_loaded", classifier.Loaded()).
		Dur("checkpoint_interval", cfg.Database.CheckpointInterval).
		Msg("Services registered")

	err = tree.Serve(ctx)

	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree stopped: %w", err)
	}

	// Flush the WAL so the next start does not replay it.
	checkpointCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.db.Checkpoint(checkpointCtx); err != nil {
		logging.Warn().Err(err).Msg("Final checkpoint failed")
	}

	logging.Info().Msg("Server stopped gracefully")
	return nil
}
