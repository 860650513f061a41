// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

// Package algorithms implements the recommendation strategies used by the
// recommend.Engine.
//
// # Algorithms
//
//   - NearestNeighbor: products bought by the single most similar client
//   - KNN: votes from the k most similar clients
//   - Popularity: best sellers by total quantity, independent of the client
//
// The collaborative strategies share a pipeline: BuildPurchaseMatrix turns
// the sales into a binary client-by-product matrix and ComputeSimilarity
// scores every pair of clients with cosine similarity.
//
// # Ordering
//
// Every ranking is deterministic. Neighbors are ordered by descending
// similarity with ties broken by ascending client id. Candidate products are
// listed in ascending product id, and vote or quantity ties are also broken
// by ascending product id.
package algorithms

import (
	"context"
	"fmt"
	"math"

	"github.com/tomtom215/shopsense/internal/recommend"
)

// New returns the personalized algorithm selected by cfg.Strategy.
func New(cfg *recommend.Config, source recommend.SalesSource) (recommend.Algorithm, error) {
	switch cfg.Strategy {
	case recommend.AlgorithmKNN:
		return NewKNN(source, cfg.Neighbors, cfg.MinSimilarity), nil
	case recommend.AlgorithmNearest:
		return NewNearestNeighbor(source, cfg.MinSimilarity), nil
	default:
		return nil, fmt.Errorf("unknown recommendation strategy %q", cfg.Strategy)
	}
}

// cosineSimilarity computes cosine similarity between two vectors.
// A zero vector has similarity 0 with everything.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// Ensure all algorithms implement the interfaces.
var (
	_ recommend.Algorithm  = (*NearestNeighbor)(nil)
	_ recommend.Algorithm  = (*KNN)(nil)
	_ recommend.Popularity = (*Popularity)(nil)
)
