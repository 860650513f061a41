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

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shopsense/internal/metrics"
	"github.com/tomtom215/shopsense/internal/segment/storage"
)

// Trainer fits and persists the segmentation model.
type Trainer struct {
	config    *Config
	extractor *Extractor
	store     *storage.Store
	logger    zerolog.Logger
	now       Clock
}

// NewTrainer creates a trainer. A nil cfg uses DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainer(cfg *Config, extractor *Extractor, store *storage.Store, logger zerolog.Logger) (*Trainer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if extractor == nil || store == nil {
		return nil, errors.New("segment: extractor and store are required")
	}
	return &Trainer{
		config:    cfg,
		extractor: extractor,
		store:     store,
		logger:    logger.With().Str("component", "segment_trainer").Logger(),
		now:       time.Now,
	}, nil
}

// ClusterSummary describes one trained cluster in original units.
type ClusterSummary struct {
	Cluster   int     `json:"cluster"`
	Segment   Segment `json:"segment"`
	Size      int     `json:"size"`
	Recency   float64 `json:"recency"`
	Frequency float64 `json:"frequency"`
	Monetary  float64 `json:"monetary"`
}

// TrainingReport summarizes a training run.
type TrainingReport struct {
	TrainingID string           `json:"training_id"`
	TrainedAt  time.Time        `json:"trained_at"`
	CohortSize int              `json:"cohort_size"`
	Inertia    float64          `json:"inertia"`
	Iterations int              `json:"iterations"`
	Duration   time.Duration    `json:"duration"`
	Clusters   []ClusterSummary `json:"clusters"`
}

// Train fits the scaler and k-means model on the current cohort and
// replaces the persisted artifacts. It returns ErrTrainingPrecondition,
// without writing anything, when there are fewer clients than clusters.
func (t *Trainer) Train(ctx context.Context) (report *TrainingReport, err error) {
	start := time.Now()
	defer func() {
		inertia := 0.0
		if report != nil {
			inertia = report.Inertia
		}
		metrics.RecordTraining(time.Since(start), inertia, err)
	}()

	cohort, err := t.extractor.ComputeCohort(ctx)
	if errors.Is(err, ErrNoData) {
		return nil, fmt.Errorf("%w: no sales recorded", ErrTrainingPrecondition)
	}
	if err != nil {
		return nil, fmt.Errorf("compute cohort: %w", err)
	}
	if len(cohort) < t.config.Clusters {
		return nil, fmt.Errorf("%w: %d clients with sales, need at least %d",
			ErrTrainingPrecondition, len(cohort), t.config.Clusters)
	}

	x := make([][]float64, len(cohort))
	for i := range cohort {
		x[i] = cohort[i].Features()
	}

	scaler, err := FitScaler(x)
	if err != nil {
		return nil, err
	}
	scaled := scaler.TransformAll(x)

	model, err := FitKMeans(ctx, scaled, t.config)
	if err != nil {
		return nil, fmt.Errorf("fit k-means: %w", err)
	}

	original := make([][]float64, len(model.Centroids))
	for c, centroid := range model.Centroids {
		original[c] = scaler.InverseTransform(centroid)
	}
	labels := DeriveLabels(original)

	sizes := make([]int, len(model.Centroids))
	for _, row := range scaled {
		sizes[model.Predict(row)]++
	}

	report = &TrainingReport{
		TrainingID: uuid.NewString(),
		TrainedAt:  t.now().UTC(),
		CohortSize: len(cohort),
		Inertia:    model.Inertia,
		Iterations: model.Iterations,
		Clusters:   make([]ClusterSummary, len(model.Centroids)),
	}
	for c := range model.Centroids {
		report.Clusters[c] = ClusterSummary{
			Cluster:   c,
			Segment:   labels[c],
			Size:      sizes[c],
			Recency:   original[c][featureRecency],
			Frequency: original[c][featureFrequency],
			Monetary:  original[c][featureMonetary],
		}
	}

	meta := storage.ArtifactMetadata{
		TrainingID: report.TrainingID,
		TrainedAt:  report.TrainedAt,
		CohortSize: report.CohortSize,
	}
	state := storage.KMeansState{
		Centroids:  model.Centroids,
		Inertia:    model.Inertia,
		Iterations: model.Iterations,
		Seed:       t.config.Seed,
		Labels:     labelStates(labels),
	}
	// Scaler and k-means are only usable as a pair.
	err = t.store.SaveSet(ctx, meta,
		storage.Artifact{Name: storage.ArtifactScaler, Data: scaler.state()},
		storage.Artifact{Name: storage.ArtifactKMeans, Data: state},
	)
	if err != nil {
		return nil, fmt.Errorf("save model artifacts: %w", err)
	}

	report.Duration = time.Since(start)

	t.logger.Info().
		Str("training_id", report.TrainingID).
		Int("cohort_size", report.CohortSize).
		Float64("inertia", report.Inertia).
		Int("iterations", report.Iterations).
		Dur("duration", report.Duration).
		Msg("Segmentation model trained")

	return report, nil
}
