// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

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

	"github.com/nexafund/recommender/internal/models"
	"github.com/nexafund/recommender/internal/recommend"
)

// fakeEngine implements Engine with canned responses.
type fakeEngine struct {
	rankResults    []models.ScoredCampaign
	rankErr        error
	similarResults []models.SimilarDonor
	similarErr     error
	status         recommend.Status
	loaded         bool

	lastRequest recommend.Request
}

func (f *fakeEngine) Rank(_ context.Context, req recommend.Request) ([]models.ScoredCampaign, error) {
	f.lastRequest = req
	if f.rankErr != nil {
		return nil, f.rankErr
	}
	return f.rankResults, nil
}

func (f *fakeEngine) Trending(ctx context.Context, topN int) ([]models.ScoredCampaign, error) {
	return f.Rank(ctx, recommend.Request{TopN: topN})
}

func (f *fakeEngine) SimilarDonors(_ context.Context, _ string, _ int) ([]models.SimilarDonor, error) {
	if f.similarErr != nil {
		return nil, f.similarErr
	}
	return f.similarResults, nil
}

func (f *fakeEngine) Status() recommend.Status { return f.status }
func (f *fakeEngine) ModelLoaded() bool        { return f.loaded }

func newTestRouter(engine Engine, refresh Refresher) http.Handler {
	return NewRouter(NewHandler(engine, refresh), RouterConfig{
		CORSOrigins:       []string{"*"},
		RateLimitRequests: 0,
		RateLimitWindow:   time.Minute,
	})
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHealthReportsModelState(t *testing.T) {
	router := newTestRouter(&fakeEngine{loaded: true}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Status != "success" {
		t.Errorf("expected success status, got %q", resp.Status)
	}
	data := resp.Data.(map[string]interface{})
	if data["model_loaded"] != true {
		t.Errorf("expected model_loaded true, got %v", data["model_loaded"])
	}
}

func TestHealthStaysUpWithoutModel(t *testing.T) {
	router := newTestRouter(&fakeEngine{loaded: false}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 even without a model, got %d", rec.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	engine := &fakeEngine{
		status: recommend.Status{
			ModelLoaded:  true,
			ModelVersion: 3,
			Donors:       5,
			Campaigns:    8,
		},
	}
	router := newTestRouter(engine, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	data := resp.Data.(map[string]interface{})
	if data["model_version"] != float64(3) {
		t.Errorf("expected model_version 3, got %v", data["model_version"])
	}
}

func TestRecommendationsHappyPath(t *testing.T) {
	engine := &fakeEngine{
		rankResults: []models.ScoredCampaign{
			{Campaign: models.Campaign{ID: "c1", Title: "Laptops"}, Score: 0.91, Badge: models.BadgeTopMatch},
		},
	}
	router := newTestRouter(engine, nil)

	body := strings.NewReader(`{"donor_id":"donor-1","top_k":5,"preferences":{"interests":["education"]}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	data := resp.Data.(map[string]interface{})
	if data["donor_id"] != "donor-1" {
		t.Errorf("expected donor_id echoed, got %v", data["donor_id"])
	}
	recs := data["recommendations"].([]interface{})
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}

	if engine.lastRequest.DonorID != "donor-1" || engine.lastRequest.TopN != 5 {
		t.Errorf("engine received wrong request: %+v", engine.lastRequest)
	}
	if engine.lastRequest.Preferences == nil || len(engine.lastRequest.Preferences.Interests) != 1 {
		t.Errorf("preferences not forwarded: %+v", engine.lastRequest.Preferences)
	}
}

func TestRecommendationsInvalidJSON(t *testing.T) {
	router := newTestRouter(&fakeEngine{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %+v", resp.Error)
	}
}

func TestRecommendationsRejectsBadTopK(t *testing.T) {
	router := newTestRouter(&fakeEngine{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(`{"top_k":500}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRecommendationsRejectsBadRiskTolerance(t *testing.T) {
	router := newTestRouter(&fakeEngine{}, nil)

	body := strings.NewReader(`{"preferences":{"riskTolerance":"reckless"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRecommendationsNoModel(t *testing.T) {
	router := newTestRouter(&fakeEngine{rankErr: recommend.ErrNoModel}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(`{"donor_id":"d1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != "MODEL_UNAVAILABLE" {
		t.Errorf("expected MODEL_UNAVAILABLE, got %+v", resp.Error)
	}
}

func TestTrendingPassesLimit(t *testing.T) {
	engine := &fakeEngine{
		rankResults: []models.ScoredCampaign{
			{Campaign: models.Campaign{ID: "c1"}, Score: 0.5, Badge: models.BadgeTrending},
		},
	}
	router := newTestRouter(engine, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/trending?limit=3", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if engine.lastRequest.TopN != 3 {
		t.Errorf("expected limit 3 forwarded, got %d", engine.lastRequest.TopN)
	}
	if engine.lastRequest.DonorID != "" {
		t.Errorf("trending must be anonymous, got donor %q", engine.lastRequest.DonorID)
	}
}

func TestTrendingRejectsOutOfRangeLimit(t *testing.T) {
	router := newTestRouter(&fakeEngine{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/trending?limit=999", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSimilarDonorsRequiresDonorID(t *testing.T) {
	router := newTestRouter(&fakeEngine{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/similar-donors", strings.NewReader(`{"top_k":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSimilarDonorsHappyPath(t *testing.T) {
	engine := &fakeEngine{
		similarResults: []models.SimilarDonor{
			{Donor: models.Donor{ID: "d2", Name: "Alex"}, Similarity: 0.87},
		},
	}
	router := newTestRouter(engine, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/similar-donors", strings.NewReader(`{"donor_id":"d1","top_k":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	data := resp.Data.(map[string]interface{})
	donors := data["similar_donors"].([]interface{})
	if len(donors) != 1 {
		t.Fatalf("expected 1 similar donor, got %d", len(donors))
	}
}

func TestRefreshConflict(t *testing.T) {
	refresh := func(context.Context) error { return recommend.ErrRefreshInProgress }
	router := newTestRouter(&fakeEngine{}, refresh)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != "REFRESH_IN_PROGRESS" {
		t.Errorf("expected REFRESH_IN_PROGRESS, got %+v", resp.Error)
	}
}

func TestRefreshUpstreamFailure(t *testing.T) {
	refresh := func(context.Context) error { return errors.New("backend unreachable") }
	router := newTestRouter(&fakeEngine{}, refresh)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != "UPSTREAM_ERROR" {
		t.Errorf("expected UPSTREAM_ERROR, got %+v", resp.Error)
	}
}

func TestRefreshSuccessReturnsStatus(t *testing.T) {
	engine := &fakeEngine{status: recommend.Status{ModelLoaded: true, ModelVersion: 1}}
	called := false
	refresh := func(context.Context) error {
		called = true
		return nil
	}
	router := newTestRouter(engine, refresh)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !called {
		t.Error("refresher was not invoked")
	}
}

func TestRequestIDHeaderSet(t *testing.T) {
	router := newTestRouter(&fakeEngine{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header on response")
	}
}

func TestRequestIDHeaderPreserved(t *testing.T) {
	router := newTestRouter(&fakeEngine{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "trace-me-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "trace-me-123" {
		t.Errorf("expected request id preserved, got %q", got)
	}
}

func TestETagHeaderSet(t *testing.T) {
	router := newTestRouter(&fakeEngine{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Header().Get("ETag") == "" {
		t.Error("expected ETag header on response")
	}
}

func TestGenerateETagDeterministic(t *testing.T) {
	a := generateETag([]byte("payload"))
	b := generateETag([]byte("payload"))
	if a != b {
		t.Errorf("same payload should hash equal: %q vs %q", a, b)
	}
	if a == generateETag([]byte("different")) {
		t.Error("different payloads should not collide here")
	}
}

func TestSanitizeLogValue(t *testing.T) {
	got := sanitizeLogValue("line1\nline2\tend")
	if strings.ContainsAny(got, "\n\t") {
		t.Errorf("control characters not escaped: %q", got)
	}
	if !strings.Contains(got, "\\x0a") {
		t.Errorf("expected escaped newline, got %q", got)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	router := NewRouter(NewHandler(&fakeEngine{}, nil), RouterConfig{
		CORSOrigins:       []string{"*"},
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
	})

	var last int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(rec, req)
		last = rec.Code
	}

	if last != http.StatusTooManyRequests {
		t.Errorf("expected third request rate limited, got %d", last)
	}
}
