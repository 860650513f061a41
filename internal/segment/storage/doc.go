// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

// Package storage persists the customer segmentation model artifacts.
//
// Two artifacts make up a trained model: the fitted feature scaler and the
// fitted k-means model with its cluster labels. Each lives in its own file
// under the model directory:
//
//	<model_dir>/scaler.gob.gz
//	<model_dir>/kmeans.gob.gz
//
// # File Format
//
// A file is a gob-encoded envelope holding ArtifactMetadata and the
// gzip-compressed, gob-encoded artifact state. The metadata carries:
//   - FormatVersion: rejected on load when it differs from this build
//   - TrainingID: shared by both artifacts of one training run
//   - Checksum: SHA-256 of the uncompressed state, verified on load
//
// # Atomic Writes
//
// Save writes to a temporary file in the same directory, syncs it and
// renames it over the previous artifact. Readers see either the old or the
// new file, never a partial one. Save is single-writer per Store; concurrent
// training runs in separate processes are not coordinated beyond rename
// atomicity.
package storage
