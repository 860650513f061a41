// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

// Package metrics defines the Prometheus instrumentation for ShopSense.
//
// Metrics are registered on the default registry through promauto and
// exposed by the API at /metrics:
//   - DuckDB query latency and errors
//   - API request counts, latency and in-flight requests
//   - recommendations by strategy (personalized or fallback)
//   - classifications by status, classifier load state and training runs
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopsense_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopsense_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopsense_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopsense_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shopsense_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopsense_recommendations_total",
			Help: "Total number of client recommendations by strategy (personalized or fallback)",
		},
		[]string{"strategy"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shopsense_recommendation_duration_seconds",
			Help:    "Time to compute a client recommendation including matrix and similarity rebuild",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendationErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shopsense_recommendation_errors_total",
			Help: "Total number of recommendation requests that failed on the sales store",
		},
	)

	BestSellersDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shopsense_best_sellers_duration_seconds",
			Help:    "Time to rank best-selling products",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Segmentation Metrics
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopsense_classifications_total",
			Help: "Total number of client classifications by status (classified, new, unavailable)",
		},
		[]string{"status"},
	)

	ClassifierLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shopsense_classifier_loaded",
			Help: "1 when segmentation model artifacts are loaded, 0 otherwise",
		},
	)

	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopsense_training_runs_total",
			Help: "Total number of segmentation training runs by outcome",
		},
		[]string{"outcome"},
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shopsense_training_duration_seconds",
			Help:    "Duration of segmentation training runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	TrainingInertia = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shopsense_training_inertia",
			Help: "Within-cluster sum of squares of the last successful training run",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records a completed client recommendation.
func RecordRecommendation(strategy string, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(strategy).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordClassification records a classification outcome.
func RecordClassification(status string) {
	ClassificationsTotal.WithLabelValues(status).Inc()
}

// SetClassifierLoaded records whether model artifacts are loaded.
func SetClassifierLoaded(loaded bool) {
	if loaded {
		ClassifierLoaded.Set(1)
	} else {
		ClassifierLoaded.Set(0)
	}
}

// RecordTraining records a training run. Inertia is only updated on success.
func RecordTraining(duration time.Duration, inertia float64, err error) {
	TrainingDuration.Observe(duration.Seconds())
	if err != nil {
		TrainingRunsTotal.WithLabelValues("failure").Inc()
		return
	}
	TrainingRunsTotal.WithLabelValues("success").Inc()
	TrainingInertia.Set(inertia)
}
