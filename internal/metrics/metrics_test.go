// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("test_list"))

	RecordDBQuery("test_list", 2*time.Millisecond, nil)
	RecordDBQuery("test_list", 3*time.Millisecond, errors.New("connection refused"))

	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("test_list")) - before; got != 1 {
		t.Errorf("DBQueryErrors delta = %v, want 1", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("GET", "/test/records", "200")
	before := testutil.ToFloat64(counter)

	RecordAPIRequest("GET", "/test/records", "200", 10*time.Millisecond)
	RecordAPIRequest("GET", "/test/records", "200", 20*time.Millisecond)

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("APIRequestsTotal delta = %v, want 2", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("APIActiveRequests = %v, want %v after balanced inc/dec", got, before)
	}
}

func TestRecordRecommendation(t *testing.T) {
	tests := []string{"personalized", "fallback"}

	for _, strategy := range tests {
		t.Run(strategy, func(t *testing.T) {
			counter := RecommendationsTotal.WithLabelValues(strategy)
			before := testutil.ToFloat64(counter)

			RecordRecommendation(strategy, time.Millisecond)

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("RecommendationsTotal{%s} delta = %v, want 1", strategy, got)
			}
		})
	}
}

func TestRecordClassification(t *testing.T) {
	counter := ClassificationsTotal.WithLabelValues("new")
	before := testutil.ToFloat64(counter)

	RecordClassification("new")

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("ClassificationsTotal{new} delta = %v, want 1", got)
	}
}

func TestSetClassifierLoaded(t *testing.T) {
	SetClassifierLoaded(true)
	if got := testutil.ToFloat64(ClassifierLoaded); got != 1 {
		t.Errorf("ClassifierLoaded = %v, want 1", got)
	}
	SetClassifierLoaded(false)
	if got := testutil.ToFloat64(ClassifierLoaded); got != 0 {
		t.Errorf("ClassifierLoaded = %v, want 0", got)
	}
}

func TestRecordTraining(t *testing.T) {
	success := TrainingRunsTotal.WithLabelValues("success")
	failure := TrainingRunsTotal.WithLabelValues("failure")
	beforeSuccess := testutil.ToFloat64(success)
	beforeFailure := testutil.ToFloat64(failure)

	RecordTraining(time.Second, 12.5, nil)
	RecordTraining(time.Second, 99, errors.New("not enough clients"))

	if got := testutil.ToFloat64(success) - beforeSuccess; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(failure) - beforeFailure; got != 1 {
		t.Errorf("failure delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(TrainingInertia); got != 12.5 {
		t.Errorf("TrainingInertia = %v, want 12.5 (failed runs must not overwrite it)", got)
	}
}

func TestMetricGathering(t *testing.T) {
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint() error = %v", err)
	}
	for _, p := range problems {
		t.Errorf("lint problem in %s: %s", p.Metric, p.Text)
	}
}
