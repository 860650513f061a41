// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package recommend

import (
	"context"

	"github.com/tomtom215/shopsense/internal/models"
)

// SalesSource is the read-only view of the sales store the recommenders need.
// It is implemented by database.DB.
type SalesSource interface {
	// ListSales returns every recorded sale.
	ListSales(ctx context.Context) ([]models.Sale, error)

	// ProductsByIDs resolves product ids to full records. Unknown ids are skipped.
	ProductsByIDs(ctx context.Context, ids []int) ([]models.Product, error)
}

// BestSellerSource is an optional extension of SalesSource for stores that
// rank products by total quantity sold themselves.
type BestSellerSource interface {
	TopProducts(ctx context.Context, n int) ([]models.ProductSales, error)
}

// Algorithm is a personalized recommendation strategy.
//
// Recommend returns at most n products for the client, best first. An empty
// result with a nil error means no personalized recommendation is possible
// (no sales, unknown client, client without history, no peers, or no
// candidate products). Errors are reserved for data-store failures.
type Algorithm interface {
	Name() string
	Recommend(ctx context.Context, clientID, n int) ([]models.Product, error)
}

// Popularity ranks products independently of any client.
type Popularity interface {
	BestSellers(ctx context.Context, n int) ([]models.Product, error)
}

// Strategy tells the caller which path produced a recommendation.
type Strategy string

const (
	// StrategyPersonalized means the configured similarity-based algorithm
	// produced the products.
	StrategyPersonalized Strategy = "personalized"

	// StrategyFallback means the personalized result was empty and the
	// products are the store's best sellers.
	StrategyFallback Strategy = "fallback"
)

// Recommendation is the result of Engine.RecommendForClient.
type Recommendation struct {
	ClientID  int              `json:"client_id"`
	Strategy  Strategy         `json:"strategy"`
	Algorithm string           `json:"algorithm,omitempty"`
	Products  []models.Product `json:"products"`
}
