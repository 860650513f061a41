// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shopsense/internal/metrics"
	"github.com/tomtom215/shopsense/internal/models"
)

// Engine composes a personalized algorithm with the best-sellers fallback.
// It holds no mutable state and is safe for concurrent use. Every call reads
// the current sales, so results always reflect the latest data.
type Engine struct {
	config       *Config
	personalized Algorithm
	popularity   Popularity
	logger       zerolog.Logger
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, personalized Algorithm, popularity Popularity, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if personalized == nil || popularity == nil {
		return nil, errors.New("recommend: personalized algorithm and popularity ranker are required")
	}

	return &Engine{
		config:       cfg,
		personalized: personalized,
		popularity:   popularity,
		logger:       logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// RecommendForClient tries the personalized algorithm and falls back to the
// best sellers when it yields nothing. Unknown clients and clients without
// purchase history are treated alike and receive the fallback.
func (e *Engine) RecommendForClient(ctx context.Context, clientID int) (*Recommendation, error) {
	start := time.Now()

	products, err := e.personalized.Recommend(ctx, clientID, e.config.Limit)
	if err != nil {
		metrics.RecommendationErrors.Inc()
		return nil, fmt.Errorf("%s recommendation for client %d: %w", e.personalized.Name(), clientID, err)
	}

	rec := &Recommendation{
		ClientID:  clientID,
		Strategy:  StrategyPersonalized,
		Algorithm: e.personalized.Name(),
		Products:  products,
	}

	if len(products) == 0 {
		fallback, err := e.popularity.BestSellers(ctx, e.config.FallbackLimit)
		if err != nil {
			metrics.RecommendationErrors.Inc()
			return nil, fmt.Errorf("best sellers fallback for client %d: %w", clientID, err)
		}
		rec.Strategy = StrategyFallback
		rec.Algorithm = ""
		rec.Products = fallback
	}

	if rec.Products == nil {
		rec.Products = []models.Product{}
	}

	metrics.RecordRecommendation(string(rec.Strategy), time.Since(start))

	e.logger.Debug().
		Int("client_id", clientID).
		Str("strategy", string(rec.Strategy)).
		Int("products", len(rec.Products)).
		Dur("duration", time.Since(start)).
		Msg("Recommendation computed")

	return rec, nil
}

// BestSellers returns up to n products by total quantity sold. n <= 0 uses
// the configured default list size.
func (e *Engine) BestSellers(ctx context.Context, n int) ([]models.Product, error) {
	if n <= 0 {
		n = e.config.BestSellersLimit
	}

	start := time.Now()
	products, err := e.popularity.BestSellers(ctx, n)
	if err != nil {
		metrics.RecommendationErrors.Inc()
		return nil, fmt.Errorf("best sellers: %w", err)
	}
	metrics.BestSellersDuration.Observe(time.Since(start).Seconds())

	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}
