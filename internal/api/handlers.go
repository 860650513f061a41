// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shopsense/internal/models"
	"github.com/tomtom215/shopsense/internal/recommend"
	"github.com/tomtom215/shopsense/internal/segment"
)

// Recommender is implemented by recommend.Engine.
type Recommender interface {
	RecommendForClient(ctx context.Context, clientID int) (*recommend.Recommendation, error)
	BestSellers(ctx context.Context, n int) ([]models.Product, error)
}

// Segmenter is implemented by segment.Classifier.
type Segmenter interface {
	Loaded() bool
	Classify(ctx context.Context, clientID int) (segment.Classification, error)
	ClassifyClients(ctx context.Context) ([]segment.ClientSegment, error)
}

// Pinger reports sales store health. It is implemented by database.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// requestTimeout bounds the work done for one request.
const requestTimeout = 10 * time.Second

// Handler serves the API endpoints.
type Handler struct {
	recommender Recommender
	segmenter   Segmenter
	db          Pinger
	version     string
	startTime   time.Time
}

// NewHandler creates a handler.
func NewHandler(recommender Recommender, segmenter Segmenter, db Pinger, version string) *Handler {
	return &Handler{
		recommender: recommender,
		segmenter:   segmenter,
		db:          db,
		version:     version,
		startTime:   time.Now(),
	}
}

type clientRequest struct {
	ClientID int `validate:"gt=0"`
}

type bestSellersRequest struct {
	N int `validate:"gte=0,lte=100"`
}

// parseClientID reads and validates the {clientID} path parameter.
func parseClientID(r *http.Request) (int, *models.APIError) {
	id, apiErr := parseIntValue("ClientID", chi.URLParam(r, "clientID"), 0)
	if apiErr != nil {
		return 0, apiErr
	}
	req := clientRequest{ClientID: id}
	if apiErr := validateRequest(&req); apiErr != nil {
		return 0, apiErr
	}
	return req.ClientID, nil
}

// ClientRecommendations handles GET /api/v1/recommendations/clients/{clientID}.
func (h *Handler) ClientRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	clientID, apiErr := parseClientID(r)
	if apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rec, err := h.recommender.RecommendForClient(ctx, clientID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "RECOMMENDATION_ERROR", "Failed to generate recommendations", err)
		return
	}

	respondSuccess(w, r, rec, start)
}

// BestSellers handles GET /api/v1/products/best-sellers?n=. A missing or
// zero n uses the configured list size.
func (h *Handler) BestSellers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	n, apiErr := parseIntValue("N", r.URL.Query().Get("n"), 0)
	if apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}
	req := bestSellersRequest{N: n}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	products, err := h.recommender.BestSellers(ctx, req.N)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load best sellers", err)
		return
	}

	respondSuccess(w, r, products, start)
}

// ClientSegment handles GET /api/v1/clients/{clientID}/segment. Clients
// without history and an untrained model are successful responses whose
// status says so.
func (h *Handler) ClientSegment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	clientID, apiErr := parseClientID(r)
	if apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cl, err := h.segmenter.Classify(ctx, clientID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to classify client", err)
		return
	}

	respondSuccess(w, r, cl, start)
}

// Clients handles GET /api/v1/clients: every client with its segment.
func (h *Handler) Clients(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rows, err := h.segmenter.ClassifyClients(ctx)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list clients", err)
		return
	}
	if rows == nil {
		rows = []segment.ClientSegment{}
	}

	respondSuccess(w, r, rows, start)
}

// Health handles GET /health. A failed database ping reports "degraded"
// with status 503; a missing model does not affect health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbOK := h.db != nil && h.db.Ping(r.Context()) == nil

	health := models.HealthStatus{
		Status:           "healthy",
		Version:          h.version,
		DatabaseOK:       dbOK,
		ClassifierLoaded: h.segmenter != nil && h.segmenter.Loaded(),
		Uptime:           time.Since(h.startTime).Seconds(),
		Timestamp:        time.Now().UTC(),
	}
	status := http.StatusOK
	if !dbOK {
		health.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     health,
		Metadata: metadata(r, time.Time{}),
	})
}
