// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shopsense/internal/models"
	"github.com/tomtom215/shopsense/internal/recommend"
	"github.com/tomtom215/shopsense/internal/segment"
)

type fakeRecommender struct {
	recs     map[int]*recommend.Recommendation
	best     []models.Product
	err      error
	gotBestN int
}

func (f *fakeRecommender) RecommendForClient(_ context.Context, clientID int) (*recommend.Recommendation, error) {
	if f.err != nil {
		return nil, f.err
	}
	if rec, ok := f.recs[clientID]; ok {
		return rec, nil
	}
	return &recommend.Recommendation{ClientID: clientID, Strategy: recommend.StrategyFallback, Products: f.best}, nil
}

func (f *fakeRecommender) BestSellers(_ context.Context, n int) ([]models.Product, error) {
	f.gotBestN = n
	if f.err != nil {
		return nil, f.err
	}
	return f.best, nil
}

type fakeSegmenter struct {
	loaded  bool
	classes map[int]segment.Classification
	clients []segment.ClientSegment
	err     error
}

func (f *fakeSegmenter) Loaded() bool { return f.loaded }

func (f *fakeSegmenter) Classify(_ context.Context, clientID int) (segment.Classification, error) {
	if f.err != nil {
		return segment.Classification{}, f.err
	}
	if cl, ok := f.classes[clientID]; ok {
		return cl, nil
	}
	return segment.Classification{ClientID: clientID, Status: segment.StatusNew, Segment: segment.SegmentNew, Cluster: -1}, nil
}

func (f *fakeSegmenter) ClassifyClients(_ context.Context) ([]segment.ClientSegment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.clients, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(_ context.Context) error { return f.err }

var (
	productA = models.Product{ID: 1, Name: "A", Price: 10}
	productC = models.Product{ID: 3, Name: "C", Price: 30}
)

func newTestServer(rec *fakeRecommender, seg *fakeSegmenter, db Pinger) http.Handler {
	h := NewHandler(rec, seg, db, "test")
	return NewRouter(h, &RouterConfig{CORSOrigins: []string{"*"}})
}

// envelope mirrors models.APIResponse with a raw data payload.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func doRequest(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func TestClientRecommendations(t *testing.T) {
	recommender := &fakeRecommender{
		recs: map[int]*recommend.Recommendation{
			1: {ClientID: 1, Strategy: recommend.StrategyPersonalized, Algorithm: "knn", Products: []models.Product{productC}},
		},
		best: []models.Product{productA},
	}
	srv := newTestServer(recommender, &fakeSegmenter{}, fakePinger{})

	tests := []struct {
		name         string
		path         string
		wantStatus   int
		wantStrategy recommend.Strategy
		wantProduct  int
		wantCode     string
	}{
		{name: "personalized", path: "/api/v1/recommendations/clients/1", wantStatus: http.StatusOK, wantStrategy: recommend.StrategyPersonalized, wantProduct: 3},
		{name: "fallback", path: "/api/v1/recommendations/clients/2", wantStatus: http.StatusOK, wantStrategy: recommend.StrategyFallback, wantProduct: 1},
		{name: "non-numeric id", path: "/api/v1/recommendations/clients/abc", wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "zero id", path: "/api/v1/recommendations/clients/0", wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "negative id", path: "/api/v1/recommendations/clients/-4", wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doRequest(t, srv, http.MethodGet, tt.path)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if env.Error == nil || env.Error.Code != tt.wantCode {
					t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
				}
				return
			}

			var got recommend.Recommendation
			if err := json.Unmarshal(env.Data, &got); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if got.Strategy != tt.wantStrategy {
				t.Errorf("Strategy = %q, want %q", got.Strategy, tt.wantStrategy)
			}
			if len(got.Products) != 1 || got.Products[0].ID != tt.wantProduct {
				t.Errorf("Products = %+v, want product %d", got.Products, tt.wantProduct)
			}
			if env.Metadata.RequestID == "" {
				t.Error("metadata has no request id")
			}
		})
	}
}

func TestClientRecommendations_StoreError(t *testing.T) {
	srv := newTestServer(&fakeRecommender{err: errors.New("db down")}, &fakeSegmenter{}, fakePinger{})

	rec, env := doRequest(t, srv, http.MethodGet, "/api/v1/recommendations/clients/1")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "RECOMMENDATION_ERROR" {
		t.Errorf("error = %+v", env.Error)
	}
	if strings.Contains(rec.Body.String(), "db down") {
		t.Error("internal error text leaked to the client")
	}
}

func TestBestSellers(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantN      int
	}{
		{name: "default size", query: "", wantStatus: http.StatusOK, wantN: 0},
		{name: "explicit size", query: "?n=2", wantStatus: http.StatusOK, wantN: 2},
		{name: "not a number", query: "?n=two", wantStatus: http.StatusBadRequest},
		{name: "negative", query: "?n=-1", wantStatus: http.StatusBadRequest},
		{name: "too large", query: "?n=101", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recommender := &fakeRecommender{best: []models.Product{productA, productC}, gotBestN: -1}
			srv := newTestServer(recommender, &fakeSegmenter{}, fakePinger{})

			rec, env := doRequest(t, srv, http.MethodGet, "/api/v1/products/best-sellers"+tt.query)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
					t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
				}
				if recommender.gotBestN != -1 {
					t.Error("recommender called for an invalid request")
				}
				return
			}
			if recommender.gotBestN != tt.wantN {
				t.Errorf("BestSellers n = %d, want %d", recommender.gotBestN, tt.wantN)
			}
			var products []models.Product
			if err := json.Unmarshal(env.Data, &products); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if len(products) != 2 || products[0].ID != 1 {
				t.Errorf("products = %+v", products)
			}
		})
	}
}

func TestClientSegment(t *testing.T) {
	seg := &fakeSegmenter{
		loaded: true,
		classes: map[int]segment.Classification{
			7: {ClientID: 7, Status: segment.StatusClassified, Segment: segment.SegmentHighValue, Cluster: 2},
			8: {ClientID: 8, Status: segment.StatusUnavailable, Segment: segment.SegmentUndefined, Cluster: -1},
		},
	}
	srv := newTestServer(&fakeRecommender{}, seg, fakePinger{})

	tests := []struct {
		path       string
		wantStatus segment.Status
		wantName   string
	}{
		{"/api/v1/clients/7/segment", segment.StatusClassified, "High Value"},
		{"/api/v1/clients/8/segment", segment.StatusUnavailable, "Undefined"},
		{"/api/v1/clients/9/segment", segment.StatusNew, "New"},
	}
	for _, tt := range tests {
		rec, env := doRequest(t, srv, http.MethodGet, tt.path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", tt.path, rec.Code)
		}
		var got segment.Classification
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if got.Status != tt.wantStatus || got.Segment.Name != tt.wantName {
			t.Errorf("%s: got %+v, want %s/%s", tt.path, got, tt.wantStatus, tt.wantName)
		}
	}

	rec, _ := doRequest(t, srv, http.MethodGet, "/api/v1/clients/x/segment")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", rec.Code)
	}

	seg.err = errors.New("boom")
	rec, env := doRequest(t, srv, http.MethodGet, "/api/v1/clients/7/segment")
	if rec.Code != http.StatusInternalServerError || env.Error == nil || env.Error.Code != "DATABASE_ERROR" {
		t.Errorf("store error: status %d, error %+v", rec.Code, env.Error)
	}
}

func TestClients(t *testing.T) {
	seg := &fakeSegmenter{
		loaded: true,
		clients: []segment.ClientSegment{
			{Client: models.Client{ID: 1, Name: "Ana"}, Classification: segment.Classification{ClientID: 1, Status: segment.StatusClassified, Segment: segment.SegmentLoyal, Cluster: 1}},
			{Client: models.Client{ID: 2, Name: "Bruno"}, Classification: segment.Classification{ClientID: 2, Status: segment.StatusNew, Segment: segment.SegmentNew, Cluster: -1}},
		},
	}
	srv := newTestServer(&fakeRecommender{}, seg, fakePinger{})

	rec, env := doRequest(t, srv, http.MethodGet, "/api/v1/clients")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var rows []segment.ClientSegment
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(rows) != 2 || rows[0].Classification.Segment != segment.SegmentLoyal || rows[1].Client.Name != "Bruno" {
		t.Errorf("rows = %+v", rows)
	}

	empty := newTestServer(&fakeRecommender{}, &fakeSegmenter{}, fakePinger{})
	_, env = doRequest(t, empty, http.MethodGet, "/api/v1/clients")
	if string(env.Data) != "[]" {
		t.Errorf("empty listing data = %s, want []", env.Data)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		loaded     bool
		wantCode   int
		wantStatus string
	}{
		{name: "healthy", db: fakePinger{}, loaded: true, wantCode: http.StatusOK, wantStatus: "healthy"},
		{name: "healthy without model", db: fakePinger{}, loaded: false, wantCode: http.StatusOK, wantStatus: "healthy"},
		{name: "database down", db: fakePinger{err: errors.New("closed")}, wantCode: http.StatusServiceUnavailable, wantStatus: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&fakeRecommender{}, &fakeSegmenter{loaded: tt.loaded}, tt.db)
			rec, env := doRequest(t, srv, http.MethodGet, "/health")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var health models.HealthStatus
			if err := json.Unmarshal(env.Data, &health); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if health.Status != tt.wantStatus || health.ClassifierLoaded != tt.loaded || health.Version != "test" {
				t.Errorf("health = %+v", health)
			}
		})
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	srv := newTestServer(&fakeRecommender{}, &fakeSegmenter{}, fakePinger{})

	rec, env := doRequest(t, srv, http.MethodGet, "/api/v1/nope")
	if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("not found: status %d, error %+v", rec.Code, env.Error)
	}

	rec, env = doRequest(t, srv, http.MethodPost, "/api/v1/clients")
	if rec.Code != http.StatusMethodNotAllowed || env.Error == nil || env.Error.Code != "METHOD_NOT_ALLOWED" {
		t.Errorf("method not allowed: status %d, error %+v", rec.Code, env.Error)
	}
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	srv := newTestServer(&fakeRecommender{}, &fakeSegmenter{}, fakePinger{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/best-sellers", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q, want req-42", got)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Metadata.RequestID != "req-42" {
		t.Errorf("metadata request id = %q, want req-42", env.Metadata.RequestID)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	h := NewHandler(&fakeRecommender{}, &fakeSegmenter{}, fakePinger{}, "test")
	srv := NewRouter(h, &RouterConfig{RateLimitRequests: 2, RateLimitWindow: time.Minute})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/best-sellers", nil)
		req.RemoteAddr = "192.0.2.10:5000"
		srv.ServeHTTP(last, req)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last.Code)
	}

	// Health is outside the limited group.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "192.0.2.10:5000"
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	srv := newTestServer(&fakeRecommender{}, &fakeSegmenter{}, fakePinger{})
	doRequest(t, srv, http.MethodGet, "/api/v1/products/best-sellers")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "shopsense_api_requests_total") {
		t.Error("metrics output missing shopsense_api_requests_total")
	}
}

func TestSanitizeLogValue(t *testing.T) {
	if got := sanitizeLogValue("a\nb\x7f"); got != `a\x0ab\x7f` {
		t.Errorf("sanitizeLogValue() = %q", got)
	}
}
