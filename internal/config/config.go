// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

// Package config loads ShopSense configuration with Koanf v2.
//
// Sources are layered, highest priority last:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/shopsense/config.yaml)
//  3. Environment variables (DUCKDB_PATH, HTTP_PORT, RECOMMEND_STRATEGY, ...)
package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Server    ServerConfig    `koanf:"server"`
	Recommend RecommendConfig `koanf:"recommend"`
	Segment   SegmentConfig   `koanf:"segment"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings for the sales store.
type DatabaseConfig struct {
	// Path is the DuckDB database file. ":memory:" opens a throwaway database.
	// Default: /data/shopsense.duckdb
	Path string `koanf:"path" validate:"required"`

	// MaxMemory is the DuckDB memory limit (e.g. "1GB").
	// Default: 1GB
	MaxMemory string `koanf:"max_memory" validate:"required"`

	// Threads is the number of DuckDB worker threads; 0 uses runtime.NumCPU().
	Threads int `koanf:"threads" validate:"gte=0"`

	// CheckpointInterval is how often the running server checkpoints the
	// DuckDB write-ahead log. 0 disables periodic checkpoints.
	// Default: 5m
	CheckpointInterval time.Duration `koanf:"checkpoint_interval" validate:"gte=0"`

	// SeedDemoData inserts a small demo data set on startup when the
	// database is empty. Intended for local development only.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`

	// Port is the listening port.
	// Default: 8380
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// Timeout bounds read and write time per request.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// CORSOrigins lists allowed CORS origins ("*" allows any).
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs requests are allowed per RateLimitWindow per client IP.
	// 0 disables rate limiting.
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// RecommendConfig holds recommendation engine settings.
//
// Environment Variables:
//   - RECOMMEND_STRATEGY: knn or nearest (default: knn)
//   - RECOMMEND_NEIGHBORS: neighbors consulted by knn (default: 3)
//   - RECOMMEND_LIMIT: personalized products returned (default: 3)
//   - RECOMMEND_FALLBACK_LIMIT: best sellers returned on fallback (default: 3)
//   - RECOMMEND_BEST_SELLERS_LIMIT: default size of the best-seller list (default: 6)
type RecommendConfig struct {
	Strategy         string  `koanf:"strategy" validate:"oneof=knn nearest"`
	Neighbors        int     `koanf:"neighbors" validate:"min=1"`
	Limit            int     `koanf:"limit" validate:"min=1"`
	FallbackLimit    int     `koanf:"fallback_limit" validate:"min=1"`
	BestSellersLimit int     `koanf:"best_sellers_limit" validate:"min=1"`
	MinSimilarity    float64 `koanf:"min_similarity" validate:"gte=-1,lte=1"`
}

// SegmentConfig holds RFM clustering settings.
//
// Environment Variables:
//   - SEGMENT_MODEL_DIR: directory holding kmeans/scaler artifacts (default: /data/models)
//   - SEGMENT_CLUSTERS: number of clusters (default: 3)
//   - SEGMENT_SEED: k-means random seed (default: 42)
//   - SEGMENT_N_INIT: k-means restarts (default: 10)
type SegmentConfig struct {
	ModelDir      string  `koanf:"model_dir" validate:"required"`
	Clusters      int     `koanf:"clusters" validate:"min=2"`
	Seed          uint64  `koanf:"seed"`
	NInit         int     `koanf:"n_init" validate:"min=1"`
	MaxIterations int     `koanf:"max_iterations" validate:"min=1"`
	Tolerance     float64 `koanf:"tolerance" validate:"gte=0"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
