// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package segment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shopsense/internal/metrics"
	"github.com/tomtom215/shopsense/internal/segment/storage"
)

// Classifier assigns clients to trained segments. It is immutable after
// LoadClassifier and safe for concurrent use.
type Classifier struct {
	source     ClientSource
	extractor  *Extractor
	scaler     *Scaler
	model      *KMeans
	labels     map[int]Segment
	trainingID string
	trainedAt  time.Time
	logger     zerolog.Logger
}

// LoadClassifier reads the persisted artifacts once. Missing, unreadable or
// mismatched artifacts leave the classifier unloaded; this is logged and is
// not an error.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func LoadClassifier(ctx context.Context, store *storage.Store, source ClientSource, clock Clock, logger zerolog.Logger) *Classifier {
	c := &Classifier{
		source:    source,
		extractor: NewExtractor(source, clock),
		logger:    logger.With().Str("component", "segment_classifier").Logger(),
	}

	if err := c.load(ctx, store); err != nil {
		c.scaler, c.model, c.labels = nil, nil, nil
		if errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn().Str("model_dir", store.Dir()).Msg("No segmentation model found, classifications unavailable until trained")
		} else {
			c.logger.Warn().Err(err).Str("model_dir", store.Dir()).Msg("Segmentation model unusable, classifications unavailable")
		}
		metrics.SetClassifierLoaded(false)
		return c
	}

	c.logger.Info().
		Str("training_id", c.trainingID).
		Time("trained_at", c.trainedAt).
		Int("clusters", len(c.model.Centroids)).
		Msg("Segmentation model loaded")
	metrics.SetClassifierLoaded(true)
	return c
}

func (c *Classifier) load(ctx context.Context, store *storage.Store) error {
	var scalerState storage.ScalerState
	scalerMeta, err := store.Load(ctx, storage.ArtifactScaler, &scalerState)
	if err != nil {
		return fmt.Errorf("load scaler: %w", err)
	}
	var modelState storage.KMeansState
	modelMeta, err := store.Load(ctx, storage.ArtifactKMeans, &modelState)
	if err != nil {
		return fmt.Errorf("load k-means model: %w", err)
	}

	if scalerMeta.TrainingID != modelMeta.TrainingID {
		return fmt.Errorf("artifacts come from different training runs (scaler %q, model %q)",
			scalerMeta.TrainingID, modelMeta.TrainingID)
	}

	scaler, err := scalerFromState(&scalerState)
	if err != nil {
		return err
	}
	if len(modelState.Centroids) == 0 {
		return errors.New("model has no centroids")
	}
	for i, centroid := range modelState.Centroids {
		if len(centroid) != numFeatures {
			return fmt.Errorf("centroid %d has %d features, want %d", i, len(centroid), numFeatures)
		}
	}

	c.scaler = scaler
	c.model = &KMeans{
		Centroids:  modelState.Centroids,
		Inertia:    modelState.Inertia,
		Iterations: modelState.Iterations,
	}
	c.labels = labelsFromStates(modelState.Labels)
	c.trainingID = modelMeta.TrainingID
	c.trainedAt = modelMeta.TrainedAt
	return nil
}

// Loaded reports whether a usable model is loaded.
func (c *Classifier) Loaded() bool {
	return c.model != nil
}

// TrainingID returns the id of the loaded model, or "" when unloaded.
func (c *Classifier) TrainingID() string {
	return c.trainingID
}

// Classify returns the segment of one client.
func (c *Classifier) Classify(ctx context.Context, clientID int) (Classification, error) {
	if !c.Loaded() {
		return c.record(unavailable(clientID)), nil
	}

	rfm, err := c.extractor.ComputeClient(ctx, clientID)
	if errors.Is(err, ErrNoData) {
		return c.record(newClient(clientID)), nil
	}
	if err != nil {
		return Classification{}, err
	}
	return c.record(c.classifyRFM(rfm)), nil
}

// ClassifyClients returns every client with its classification, in the
// order of the client listing.
func (c *Classifier) ClassifyClients(ctx context.Context) ([]ClientSegment, error) {
	clients, err := c.source.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	byClient := make(map[int]RFM)
	if c.Loaded() {
		cohort, err := c.extractor.ComputeCohort(ctx)
		if err != nil && !errors.Is(err, ErrNoData) {
			return nil, err
		}
		for _, r := range cohort {
			byClient[r.ClientID] = r
		}
	}

	out := make([]ClientSegment, 0, len(clients))
	for _, client := range clients {
		var cl Classification
		switch rfm, ok := byClient[client.ID]; {
		case !c.Loaded():
			cl = unavailable(client.ID)
		case !ok:
			cl = newClient(client.ID)
		default:
			cl = c.classifyRFM(rfm)
		}
		out = append(out, ClientSegment{Client: client, Classification: c.record(cl)})
	}
	return out, nil
}

func (c *Classifier) classifyRFM(rfm RFM) Classification {
	cluster := c.model.Predict(c.scaler.Transform(rfm.Features()))
	seg, ok := c.labels[cluster]
	if !ok {
		c.logger.Warn().Int("cluster", cluster).Msg("Cluster has no label")
		return unavailable(rfm.ClientID)
	}
	return Classification{ClientID: rfm.ClientID, Status: StatusClassified, Segment: seg, Cluster: cluster}
}

func (c *Classifier) record(cl Classification) Classification {
	metrics.RecordClassification(string(cl.Status))
	return cl
}
