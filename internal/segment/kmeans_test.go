// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package segment

import (
	"context"
	"errors"
	"testing"
)

func blobs() [][]float64 {
	return [][]float64{
		{0, 0, 0}, {0.1, 0, 0}, {0, 0.1, 0},
		{10, 10, 10}, {10.1, 10, 10}, {10, 10.1, 10},
		{-10, 5, 20}, {-10.1, 5, 20}, {-10, 5.1, 20},
	}
}

func TestFitKMeans_SeparatesBlobs(t *testing.T) {
	x := blobs()
	m, err := FitKMeans(context.Background(), x, DefaultConfig())
	if err != nil {
		t.Fatalf("FitKMeans() error = %v", err)
	}
	if len(m.Centroids) != 3 {
		t.Fatalf("len(Centroids) = %d, want 3", len(m.Centroids))
	}

	for b := 0; b < 3; b++ {
		first := m.Predict(x[b*3])
		for i := 1; i < 3; i++ {
			if got := m.Predict(x[b*3+i]); got != first {
				t.Errorf("blob %d split across clusters %d and %d", b, first, got)
			}
		}
	}
	if m.Predict(x[0]) == m.Predict(x[3]) || m.Predict(x[3]) == m.Predict(x[6]) || m.Predict(x[0]) == m.Predict(x[6]) {
		t.Error("distinct blobs share a cluster")
	}
	if m.Inertia > 0.1 {
		t.Errorf("Inertia = %v, want a tight fit", m.Inertia)
	}
	if m.Iterations < 1 {
		t.Errorf("Iterations = %d, want >= 1", m.Iterations)
	}
}

func TestFitKMeans_Deterministic(t *testing.T) {
	x := blobs()
	a, err := FitKMeans(context.Background(), x, DefaultConfig())
	if err != nil {
		t.Fatalf("FitKMeans() error = %v", err)
	}
	b, err := FitKMeans(context.Background(), x, DefaultConfig())
	if err != nil {
		t.Fatalf("FitKMeans() error = %v", err)
	}
	if a.Inertia != b.Inertia {
		t.Errorf("Inertia differs: %v vs %v", a.Inertia, b.Inertia)
	}
	for c := range a.Centroids {
		for j := range a.Centroids[c] {
			if a.Centroids[c][j] != b.Centroids[c][j] {
				t.Fatalf("centroid %d differs: %v vs %v", c, a.Centroids[c], b.Centroids[c])
			}
		}
	}
}

func TestFitKMeans_TooFewRows(t *testing.T) {
	_, err := FitKMeans(context.Background(), [][]float64{{1, 1, 1}, {2, 2, 2}}, DefaultConfig())
	if !errors.Is(err, ErrTrainingPrecondition) {
		t.Errorf("FitKMeans() error = %v, want ErrTrainingPrecondition", err)
	}
}

func TestFitKMeans_IdenticalRows(t *testing.T) {
	x := [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}, {1, 1, 1}}
	m, err := FitKMeans(context.Background(), x, DefaultConfig())
	if err != nil {
		t.Fatalf("FitKMeans() error = %v", err)
	}
	if m.Inertia != 0 {
		t.Errorf("Inertia = %v, want 0", m.Inertia)
	}
}

func TestFitKMeans_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FitKMeans(ctx, blobs(), DefaultConfig()); !errors.Is(err, context.Canceled) {
		t.Errorf("FitKMeans() error = %v, want context.Canceled", err)
	}
}

func TestKMeans_PredictTiesToLowestIndex(t *testing.T) {
	m := &KMeans{Centroids: [][]float64{{-1, 0, 0}, {1, 0, 0}}}
	if got := m.Predict([]float64{0, 0, 0}); got != 0 {
		t.Errorf("Predict() = %d, want 0", got)
	}
	if got := m.Predict([]float64{0.9, 0, 0}); got != 1 {
		t.Errorf("Predict() = %d, want 1", got)
	}
}

func TestDeriveLabels(t *testing.T) {
	tests := []struct {
		name      string
		centroids [][]float64
		want      map[int]Segment
	}{
		{
			name:      "three clusters",
			centroids: [][]float64{{5, 10, 500}, {300, 1, 10}, {40, 4, 90}},
			want:      map[int]Segment{0: SegmentHighValue, 1: SegmentAtRisk, 2: SegmentLoyal},
		},
		{
			name:      "two clusters",
			centroids: [][]float64{{5, 10, 500}, {300, 1, 10}},
			want:      map[int]Segment{0: SegmentHighValue, 1: SegmentAtRisk},
		},
		{
			name:      "four clusters",
			centroids: [][]float64{{0, 0, 4}, {0, 0, 1}, {0, 0, 3}, {0, 0, 2}},
			want:      map[int]Segment{0: SegmentHighValue, 1: SegmentAtRisk, 2: SegmentLoyal, 3: SegmentLoyal},
		},
		{
			name:      "equal monetary ranks by index",
			centroids: [][]float64{{0, 0, 7}, {0, 0, 7}, {0, 0, 7}},
			want:      map[int]Segment{0: SegmentAtRisk, 1: SegmentLoyal, 2: SegmentHighValue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveLabels(tt.centroids)
			if len(got) != len(tt.want) {
				t.Fatalf("DeriveLabels() = %v, want %v", got, tt.want)
			}
			for c, seg := range tt.want {
				if got[c] != seg {
					t.Errorf("cluster %d = %v, want %v", c, got[c], seg)
				}
			}
		})
	}
}
