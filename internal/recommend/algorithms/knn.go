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

// ========== Nearest Neighbor ==========

// NearestNeighbor recommends the products bought by the single most similar
// client that the target has not bought.
type NearestNeighbor struct {
	source        recommend.SalesSource
	minSimilarity float64
}

// NewNearestNeighbor creates a 1-NN recommender over source.
func NewNearestNeighbor(source recommend.SalesSource, minSimilarity float64) *NearestNeighbor {
	return &NearestNeighbor{source: source, minSimilarity: minSimilarity}
}

// Name returns the algorithm identifier.
func (a *NearestNeighbor) Name() string {
	return recommend.AlgorithmNearest
}

// Recommend returns at most n products in ascending product id order.
func (a *NearestNeighbor) Recommend(ctx context.Context, clientID, n int) ([]models.Product, error) {
	m, table, err := loadSimilarity(ctx, a.source)
	if err != nil {
		return nil, err
	}

	ids := rankNearest(m, table, clientID, n, a.minSimilarity)
	return resolveProducts(ctx, a.source, ids)
}

// rankNearest returns the 1-NN candidate ids. The matrix and table may be nil.
func rankNearest(m *PurchaseMatrix, table *SimilarityTable, clientID, n int, minSimilarity float64) []int {
	if m == nil || n <= 0 || !m.HasClient(clientID) {
		return nil
	}

	neighbors := table.topNeighbors(clientID, 1, minSimilarity)
	if len(neighbors) == 0 {
		return nil
	}

	candidates := m.Candidates(clientID, neighbors[0].ClientID)
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// ========== K Nearest Neighbors ==========

// KNN recommends products by counting how many of the k most similar
// clients bought each product the target has not.
type KNN struct {
	source        recommend.SalesSource
	k             int
	minSimilarity float64
}

// NewKNN creates a k-NN recommender over source.
func NewKNN(source recommend.SalesSource, k int, minSimilarity float64) *KNN {
	return &KNN{source: source, k: k, minSimilarity: minSimilarity}
}

// Name returns the algorithm identifier.
func (a *KNN) Name() string {
	return recommend.AlgorithmKNN
}

// K returns the configured neighbor count.
func (a *KNN) K() int {
	return a.k
}

// Recommend returns at most n products using the configured k.
func (a *KNN) Recommend(ctx context.Context, clientID, n int) ([]models.Product, error) {
	return a.RecommendK(ctx, clientID, a.k, n)
}

// RecommendK returns at most n products ranked by descending vote count
// from the k nearest neighbors, ties broken by ascending product id.
func (a *KNN) RecommendK(ctx context.Context, clientID, k, n int) ([]models.Product, error) {
	m, table, err := loadSimilarity(ctx, a.source)
	if err != nil {
		return nil, err
	}

	ids := rankKNN(m, table, clientID, k, n, a.minSimilarity)
	return resolveProducts(ctx, a.source, ids)
}

// productVotes is a candidate product with its vote count.
type productVotes struct {
	productID int
	votes     int
}

// rankKNN returns the k-NN candidate ids in ranking order.
func rankKNN(m *PurchaseMatrix, table *SimilarityTable, clientID, k, n int, minSimilarity float64) []int {
	if m == nil || k <= 0 || n <= 0 || !m.HasClient(clientID) {
		return nil
	}

	votes := make(map[int]int)
	for _, nb := range table.topNeighbors(clientID, k, minSimilarity) {
		for _, productID := range m.Candidates(clientID, nb.ClientID) {
			votes[productID]++
		}
	}
	if len(votes) == 0 {
		return nil
	}

	ranked := make([]productVotes, 0, len(votes))
	for productID, v := range votes {
		ranked = append(ranked, productVotes{productID: productID, votes: v})
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

// ========== Shared helpers ==========

// loadSimilarity reads the current sales and builds the matrix and table.
// Both are nil when there are no sales.
func loadSimilarity(ctx context.Context, source recommend.SalesSource) (*PurchaseMatrix, *SimilarityTable, error) {
	sales, err := source.ListSales(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list sales: %w", err)
	}
	if ContextCancelled(ctx) {
		return nil, nil, ctx.Err()
	}

	m := BuildPurchaseMatrix(sales)
	if m == nil {
		return nil, nil, nil
	}
	return m, ComputeSimilarity(m), nil
}

// resolveProducts looks up full product records and keeps the order of ids.
func resolveProducts(ctx context.Context, source recommend.SalesSource, ids []int) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	products, err := source.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}

	byID := make(map[int]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
