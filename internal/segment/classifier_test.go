// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package segment

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shopsense/internal/segment/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func trainCohort(t *testing.T, src *fakeSource, store *storage.Store) *TrainingReport {
	t.Helper()
	trainer, err := NewTrainer(nil, NewExtractor(src, fixedClock), store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewTrainer() error = %v", err)
	}
	report, err := trainer.Train(context.Background())
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return report
}

func TestTrainer_Train(t *testing.T) {
	src := segmentedCohort()
	store := newTestStore(t)

	report := trainCohort(t, src, store)

	if report.TrainingID == "" {
		t.Error("TrainingID is empty")
	}
	if report.CohortSize != 9 {
		t.Errorf("CohortSize = %d, want 9", report.CohortSize)
	}
	if len(report.Clusters) != 3 {
		t.Fatalf("len(Clusters) = %d, want 3", len(report.Clusters))
	}

	bySegment := make(map[string]ClusterSummary)
	for _, c := range report.Clusters {
		if c.Size != 3 {
			t.Errorf("cluster %d size = %d, want 3", c.Cluster, c.Size)
		}
		bySegment[c.Segment.Name] = c
	}
	for _, name := range []string{"At Risk", "Loyal", "High Value"} {
		if _, ok := bySegment[name]; !ok {
			t.Errorf("no cluster labeled %q in %+v", name, report.Clusters)
		}
	}
	if hv := bySegment["High Value"]; hv.Monetary < 1900 || hv.Monetary > 2000 {
		t.Errorf("High Value monetary centroid = %v, want about 1950", hv.Monetary)
	}
	if ar := bySegment["At Risk"]; ar.Recency < 299 || ar.Recency > 321 {
		t.Errorf("At Risk recency centroid = %v, want about 310", ar.Recency)
	}

	for _, name := range []string{storage.ArtifactScaler, storage.ArtifactKMeans} {
		meta, err := store.Stat(context.Background(), name)
		if err != nil {
			t.Fatalf("Stat(%s) error = %v", name, err)
		}
		if meta.TrainingID != report.TrainingID {
			t.Errorf("%s TrainingID = %q, want %q", name, meta.TrainingID, report.TrainingID)
		}
	}
}

func TestTrainer_Precondition(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
	}{
		{name: "no sales", src: &fakeSource{}},
		{
			name: "fewer clients than clusters",
			src: func() *fakeSource {
				f := &fakeSource{}
				f.addSales(1, 2, 5, 10)
				f.addSales(2, 1, 50, 20)
				return f
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			previous := trainCohort(t, segmentedCohort(), store)

			trainer, err := NewTrainer(nil, NewExtractor(tt.src, fixedClock), store, zerolog.Nop())
			if err != nil {
				t.Fatalf("NewTrainer() error = %v", err)
			}

			_, err = trainer.Train(context.Background())
			if !errors.Is(err, ErrTrainingPrecondition) {
				t.Fatalf("Train() error = %v, want ErrTrainingPrecondition", err)
			}

			entries, err := os.ReadDir(store.Dir())
			if err != nil {
				t.Fatalf("ReadDir() error = %v", err)
			}
			if len(entries) != 2 {
				t.Errorf("model directory has %d entries after precondition failure, want 2", len(entries))
			}
			for _, name := range []string{storage.ArtifactScaler, storage.ArtifactKMeans} {
				meta, err := store.Stat(context.Background(), name)
				if err != nil {
					t.Fatalf("Stat(%s) error = %v", name, err)
				}
				if meta.TrainingID != previous.TrainingID {
					t.Errorf("%s TrainingID = %q, want untouched %q", name, meta.TrainingID, previous.TrainingID)
				}
			}
		})
	}
}

func TestNewTrainer_Validation(t *testing.T) {
	store := newTestStore(t)
	ext := NewExtractor(&fakeSource{}, fixedClock)

	if _, err := NewTrainer(&Config{Clusters: 1, NInit: 1, MaxIterations: 1}, ext, store, zerolog.Nop()); err == nil {
		t.Error("NewTrainer() expected error for one cluster")
	}
	if _, err := NewTrainer(nil, nil, store, zerolog.Nop()); err == nil {
		t.Error("NewTrainer() expected error for nil extractor")
	}
}

func TestClassifier_RoundTrip(t *testing.T) {
	src := segmentedCohort()
	store := newTestStore(t)
	report := trainCohort(t, src, store)

	c := LoadClassifier(context.Background(), store, src, fixedClock, zerolog.Nop())
	if !c.Loaded() {
		t.Fatal("classifier not loaded after training")
	}
	if c.TrainingID() != report.TrainingID {
		t.Errorf("TrainingID() = %q, want %q", c.TrainingID(), report.TrainingID)
	}

	ext := NewExtractor(src, fixedClock)
	tests := []struct {
		clientID int
		want     Segment
	}{
		{1, SegmentAtRisk}, {2, SegmentAtRisk}, {3, SegmentAtRisk},
		{4, SegmentLoyal}, {5, SegmentLoyal}, {6, SegmentLoyal},
		{7, SegmentHighValue}, {8, SegmentHighValue}, {9, SegmentHighValue},
	}
	for _, tt := range tests {
		got, err := c.Classify(context.Background(), tt.clientID)
		if err != nil {
			t.Fatalf("Classify(%d) error = %v", tt.clientID, err)
		}
		if got.Status != StatusClassified || got.Segment != tt.want {
			t.Errorf("Classify(%d) = %+v, want classified %v", tt.clientID, got, tt.want)
		}
		if got.Cluster < 0 || got.Cluster >= len(report.Clusters) {
			t.Errorf("Classify(%d).Cluster = %d out of range", tt.clientID, got.Cluster)
		}
		if report.Clusters[got.Cluster].Segment != got.Segment {
			t.Errorf("Classify(%d) cluster %d has segment %v in report", tt.clientID, got.Cluster, report.Clusters[got.Cluster].Segment)
		}

		rfm, err := ext.ComputeClient(context.Background(), tt.clientID)
		if err != nil {
			t.Fatalf("ComputeClient(%d) error = %v", tt.clientID, err)
		}
		if want := nearestCluster(report.Clusters, rfm.Features()); got.Cluster != want {
			t.Errorf("Classify(%d).Cluster = %d, want nearest centroid %d", tt.clientID, got.Cluster, want)
		}
	}
}

// nearestCluster returns the cluster whose original-unit centroid is closest
// to x.
func nearestCluster(clusters []ClusterSummary, x []float64) int {
	best, bestDist := -1, math.Inf(1)
	for _, c := range clusters {
		centroid := []float64{c.Recency, c.Frequency, c.Monetary}
		d := 0.0
		for i := range x {
			diff := x[i] - centroid[i]
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = c.Cluster, d
		}
	}
	return best
}

func TestClassifier_NewClient(t *testing.T) {
	src := segmentedCohort()
	store := newTestStore(t)
	trainCohort(t, src, store)

	c := LoadClassifier(context.Background(), store, src, fixedClock, zerolog.Nop())
	for _, id := range []int{10, 999} {
		got, err := c.Classify(context.Background(), id)
		if err != nil {
			t.Fatalf("Classify(%d) error = %v", id, err)
		}
		if got.Status != StatusNew || got.Segment != SegmentNew || got.Cluster != -1 {
			t.Errorf("Classify(%d) = %+v, want New", id, got)
		}
	}
}

func TestClassifier_NoModel(t *testing.T) {
	src := segmentedCohort()
	c := LoadClassifier(context.Background(), newTestStore(t), src, fixedClock, zerolog.Nop())
	if c.Loaded() {
		t.Fatal("Loaded() = true with no artifacts")
	}

	for _, id := range []int{1, 7, 10} {
		got, err := c.Classify(context.Background(), id)
		if err != nil {
			t.Fatalf("Classify(%d) error = %v", id, err)
		}
		if got.Status != StatusUnavailable || got.Segment != SegmentUndefined {
			t.Errorf("Classify(%d) = %+v, want Unavailable/Undefined", id, got)
		}
	}
}

func TestClassifier_MismatchedArtifacts(t *testing.T) {
	src := segmentedCohort()
	store := newTestStore(t)
	trainCohort(t, src, store)
	ctx := context.Background()

	var scaler storage.ScalerState
	meta, err := store.Load(ctx, storage.ArtifactScaler, &scaler)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	meta.TrainingID = "another-run"
	if err := store.Save(ctx, storage.ArtifactScaler, scaler, *meta); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	c := LoadClassifier(ctx, store, src, fixedClock, zerolog.Nop())
	if c.Loaded() {
		t.Fatal("Loaded() = true with mismatched training ids")
	}
	got, err := c.Classify(ctx, 7)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got.Status != StatusUnavailable {
		t.Errorf("Classify() = %+v, want Unavailable", got)
	}
}

func TestClassifier_CorruptArtifact(t *testing.T) {
	src := segmentedCohort()
	store := newTestStore(t)
	trainCohort(t, src, store)

	if err := os.WriteFile(store.Path(storage.ArtifactKMeans), []byte("garbage"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	c := LoadClassifier(context.Background(), store, src, fixedClock, zerolog.Nop())
	if c.Loaded() {
		t.Error("Loaded() = true with a corrupt model file")
	}
}

func TestClassifier_PropagatesStoreErrors(t *testing.T) {
	src := segmentedCohort()
	store := newTestStore(t)
	trainCohort(t, src, store)

	c := LoadClassifier(context.Background(), store, src, fixedClock, zerolog.Nop())
	storeErr := errors.New("database is locked")
	src.setErr(storeErr)

	if _, err := c.Classify(context.Background(), 1); !errors.Is(err, storeErr) {
		t.Errorf("Classify() error = %v, want %v", err, storeErr)
	}
	if _, err := c.ClassifyClients(context.Background()); !errors.Is(err, storeErr) {
		t.Errorf("ClassifyClients() error = %v, want %v", err, storeErr)
	}
}

func TestClassifier_ClassifyClients(t *testing.T) {
	src := segmentedCohort()
	store := newTestStore(t)
	trainCohort(t, src, store)
	ctx := context.Background()

	c := LoadClassifier(ctx, store, src, fixedClock, zerolog.Nop())
	rows, err := c.ClassifyClients(ctx)
	if err != nil {
		t.Fatalf("ClassifyClients() error = %v", err)
	}
	if len(rows) != 10 {
		t.Fatalf("len(rows) = %d, want 10", len(rows))
	}
	for _, row := range rows {
		single, err := c.Classify(ctx, row.Client.ID)
		if err != nil {
			t.Fatalf("Classify(%d) error = %v", row.Client.ID, err)
		}
		if single != row.Classification {
			t.Errorf("client %d: listing %+v, single %+v", row.Client.ID, row.Classification, single)
		}
	}
	if last := rows[9]; last.Classification.Status != StatusNew {
		t.Errorf("client 10 = %+v, want New", last.Classification)
	}

	unloaded := LoadClassifier(ctx, newTestStore(t), src, fixedClock, zerolog.Nop())
	rows, err = unloaded.ClassifyClients(ctx)
	if err != nil {
		t.Fatalf("ClassifyClients() error = %v", err)
	}
	for _, row := range rows {
		if row.Classification.Status != StatusUnavailable {
			t.Errorf("client %d = %+v, want Unavailable", row.Client.ID, row.Classification)
		}
	}
}

func TestClassifier_Retrain(t *testing.T) {
	src := segmentedCohort()
	store := newTestStore(t)
	first := trainCohort(t, src, store)
	second := trainCohort(t, src, store)

	if first.TrainingID == second.TrainingID {
		t.Error("retraining reused the training id")
	}
	c := LoadClassifier(context.Background(), store, src, fixedClock, zerolog.Nop())
	if c.TrainingID() != second.TrainingID {
		t.Errorf("TrainingID() = %q, want latest %q", c.TrainingID(), second.TrainingID)
	}
}

// failOnStagedScaler reports cancellation once the scaler has been staged,
// so the k-means artifact of the same run is never written.
type failOnStagedScaler struct {
	context.Context
	dir string
}

func (c failOnStagedScaler) Err() error {
	staged, _ := filepath.Glob(filepath.Join(c.dir, storage.ArtifactScaler+".*.tmp"))
	if len(staged) > 0 {
		return context.Canceled
	}
	return c.Context.Err()
}

func TestTrainer_FailedSaveKeepsPreviousModel(t *testing.T) {
	src := segmentedCohort()
	store := newTestStore(t)
	first := trainCohort(t, src, store)

	trainer, err := NewTrainer(nil, NewExtractor(src, fixedClock), store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewTrainer() error = %v", err)
	}
	ctx := failOnStagedScaler{Context: context.Background(), dir: store.Dir()}
	if _, err := trainer.Train(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Train() error = %v, want context.Canceled", err)
	}

	leftover, err := filepath.Glob(filepath.Join(store.Dir(), "*.tmp"))
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(leftover) != 0 {
		t.Errorf("temporary files left behind: %v", leftover)
	}

	c := LoadClassifier(context.Background(), store, src, fixedClock, zerolog.Nop())
	if !c.Loaded() {
		t.Fatal("previous model no longer loads after a failed save")
	}
	if c.TrainingID() != first.TrainingID {
		t.Errorf("TrainingID() = %q, want previous %q", c.TrainingID(), first.TrainingID)
	}
	got, err := c.Classify(context.Background(), 9)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got.Status != StatusClassified || got.Segment != SegmentHighValue {
		t.Errorf("Classify(9) = %+v, want classified High Value", got)
	}
}
