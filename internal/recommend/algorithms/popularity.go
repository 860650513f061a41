// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package algorithms

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/shopsense/internal/models"
	"github.com/tomtom215/shopsense/internal/recommend"
)

// Popularity ranks products by total quantity sold. It ignores similarity
// entirely and serves as the fallback for clients without a personalized
// recommendation.
type Popularity struct {
	source recommend.SalesSource
}

// NewPopularity creates a best-sellers ranker over source.
func NewPopularity(source recommend.SalesSource) *Popularity {
	return &Popularity{source: source}
}

// BestSellers returns at most n products by descending total quantity, ties
// broken by ascending product id. It is empty when there are no sales.
func (p *Popularity) BestSellers(ctx context.Context, n int) ([]models.Product, error) {
	if n <= 0 {
		return []models.Product{}, nil
	}

	if agg, ok := p.source.(recommend.BestSellerSource); ok {
		top, err := agg.TopProducts(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("top products: %w", err)
		}
		products := make([]models.Product, len(top))
		for i := range top {
			products[i] = top[i].Product
		}
		return products, nil
	}

	sales, err := p.source.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	return resolveProducts(ctx, p.source, RankBestSellers(sales, n))
}

// RankBestSellers returns at most n product ids by descending total
// quantity, ties broken by ascending product id.
func RankBestSellers(sales []models.Sale, n int) []int {
	if n <= 0 || len(sales) == 0 {
		return nil
	}

	totals := make(map[int]int)
	for i := range sales {
		totals[sales[i].ProductID] += sales[i].Quantity
	}

	ranked := make([]productVotes, 0, len(totals))
	for productID, qty := range totals {
		ranked = append(ranked, productVotes{productID: productID, votes: qty})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].votes != ranked[j].votes {
			return ranked[i].votes > ranked[j].votes
		}
		return ranked[i].productID < ranked[j].productID
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	ids := make([]int, len(ranked))
	for i, r := range ranked {
		ids[i] = r.productID
	}
	return ids
}
