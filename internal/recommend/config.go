// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package recommend

import (
	"fmt"
)

// Strategy names accepted by Config.Strategy.
const (
	AlgorithmKNN     = "knn"
	AlgorithmNearest = "nearest"
)

// Config contains the recommendation engine settings.
type Config struct {
	// Strategy selects the personalized algorithm: "knn" or "nearest".
	Strategy string

	// Neighbors is k for the knn strategy.
	Neighbors int

	// Limit is the number of personalized products returned.
	Limit int

	// FallbackLimit is the number of best sellers returned when the
	// personalized result is empty.
	FallbackLimit int

	// BestSellersLimit is the default size of the standalone best-seller list.
	BestSellersLimit int

	// MinSimilarity drops neighbors scoring below it. 0 keeps every peer
	// with a non-negative score, which for binary rows is every peer.
	MinSimilarity float64
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Strategy:         AlgorithmKNN,
		Neighbors:        3,
		Limit:            3,
		FallbackLimit:    3,
		BestSellersLimit: 6,
		MinSimilarity:    0,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Strategy {
	case AlgorithmKNN, AlgorithmNearest:
	default:
		return fmt.Errorf("unknown strategy %q (want %s or %s)", c.Strategy, AlgorithmKNN, AlgorithmNearest)
	}
	if c.Neighbors < 1 {
		return fmt.Errorf("neighbors must be at least 1, got %d", c.Neighbors)
	}
	if c.Limit < 1 {
		return fmt.Errorf("limit must be at least 1, got %d", c.Limit)
	}
	if c.FallbackLimit < 1 {
		return fmt.Errorf("fallback limit must be at least 1, got %d", c.FallbackLimit)
	}
	if c.BestSellersLimit < 1 {
		return fmt.Errorf("best sellers limit must be at least 1, got %d", c.BestSellersLimit)
	}
	if c.MinSimilarity < -1 || c.MinSimilarity > 1 {
		return fmt.Errorf("min similarity must be within [-1, 1], got %g", c.MinSimilarity)
	}
	return nil
}
