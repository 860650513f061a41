// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

// Package segment implements RFM customer segmentation.
//
// Every client with at least one sale is described by three features:
//   - Recency: whole days since the client's most recent sale
//   - Frequency: number of sale rows
//   - Monetary: sum of sale totals
//
// # Training
//
// Trainer reads the full RFM cohort, standardizes it, fits k-means with
// k-means++ seeding and several restarts, and names each cluster by ranking
// the de-normalized monetary value of its centroid. The scaler and the model
// are persisted through the storage package with a shared training id.
//
// # Inference
//
// LoadClassifier reads the artifacts once. A missing or inconsistent pair is
// a valid state: every classification then reports StatusUnavailable. A
// client without sales is StatusNew. Everything else maps to the nearest
// centroid's segment.
//
// Classification results are values, not errors. Errors are reserved for
// data-store failures.
package segment
