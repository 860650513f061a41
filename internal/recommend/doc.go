// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

// Package recommend provides product recommendations for clients.
//
// The Engine composes a personalized Algorithm (nearest neighbor or k
// nearest neighbors over the client-by-product purchase matrix, see the
// algorithms subpackage) with a best-sellers fallback:
//
//	rec, err := engine.RecommendForClient(ctx, clientID)
//	switch rec.Strategy {
//	case recommend.StrategyPersonalized:
//	    // products bought by similar clients
//	case recommend.StrategyFallback:
//	    // the store's best sellers
//	}
//
// Nothing is cached between calls. The purchase matrix and similarity table
// are rebuilt from the current sales on every request, which keeps results
// consistent with the latest sale at the cost of recomputation.
//
// This package has no dependency on the database package. The SalesSource
// interface is implemented by database.DB and wired in by the caller.
package recommend
