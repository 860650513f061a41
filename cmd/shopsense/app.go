// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shopsense/internal/config"
	"github.com/tomtom215/shopsense/internal/database"
	"github.com/tomtom215/shopsense/internal/logging"
	"github.com/tomtom215/shopsense/internal/recommend"
	"github.com/tomtom215/shopsense/internal/recommend/algorithms"
	"github.com/tomtom215/shopsense/internal/segment"
)

// app holds what every command needs: configuration and an open database.
type app struct {
	cfg *config.Config
	db  *database.DB
}

// openApp loads configuration, initializes logging and opens the database.
// The caller must call close.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Debug().
		Str("db_path", cfg.Database.Path).
		Str("model_dir", cfg.Segment.ModelDir).
		Msg("Configuration loaded")

	return &app{cfg: cfg, db: db}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}

// engine assembles the recommendation engine over the database.
func (a *app) engine() (*recommend.Engine, error) {
	rc := recommendConfig(&a.cfg.Recommend)
	personalized, err := algorithms.New(rc, a.db)
	if err != nil {
		return nil, err
	}
	return recommend.NewEngine(rc, personalized, algorithms.NewPopularity(a.db), logging.Logger())
}

func recommendConfig(cfg *config.RecommendConfig) *recommend.Config {
	return &recommend.Config{
		Strategy:         cfg.Strategy,
		Neighbors:        cfg.Neighbors,
		Limit:            cfg.Limit,
		FallbackLimit:    cfg.FallbackLimit,
		BestSellersLimit: cfg.BestSellersLimit,
		MinSimilarity:    cfg.MinSimilarity,
	}
}

func segmentConfig(cfg *config.SegmentConfig) *segment.Config {
	return &segment.Config{
		Clusters:      cfg.Clusters,
		Seed:          cfg.Seed,
		NInit:         cfg.NInit,
		MaxIterations: cfg.MaxIterations,
		Tolerance:     cfg.Tolerance,
	}
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
