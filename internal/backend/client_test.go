package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FolioScraper/internal/model"
)

func TestSaveHoldings(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"ok":true,"rows_saved":1}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, time.Minute)
	err := c.SaveHoldings(context.Background(), []model.Holding{
		{Symbol: "AAPL", CurrentValue: "$1,000"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/save-holdings" {
		t.Errorf("path: got %q", gotPath)
	}

	var payload struct {
		Data []model.Holding `json:"data"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if len(payload.Data) != 1 || payload.Data[0].Symbol != "AAPL" {
		t.Errorf("unexpected request body: %s", gotBody)
	}
}

func TestDiversity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/diversity" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"total_value": 110000,
			"industry_breakdown": [
				{"industry": "Technology", "value": 80000, "weight_pct": 72.73},
				{"industry": "Healthcare", "value": 30000, "weight_pct": 27.27}
			],
			"metrics": {
				"hhi": 6033,
				"entropy": 0.5860,
				"effective_industries": 1.80,
				"top_industry_weight_pct": 72.73,
				"rating": "Concentrated"
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, time.Minute)
	report, err := c.Diversity(context.Background(), []IndustryValue{
		{Industry: "Technology", Value: 80000},
		{Industry: "Healthcare", Value: 30000},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalValue != 110000 {
		t.Errorf("total_value: got %v", report.TotalValue)
	}
	if len(report.IndustryBreakdown) != 2 || report.IndustryBreakdown[0].Industry != "Technology" {
		t.Errorf("breakdown: got %+v", report.IndustryBreakdown)
	}
	if report.Metrics.Rating != "Concentrated" {
		t.Errorf("rating: got %q", report.Metrics.Rating)
	}
}

func TestDiversity_CachesByPayload(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"total_value": 100, "industry_breakdown": [], "metrics": {"hhi": 0, "rating": "No Data"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, time.Minute)
	req := []IndustryValue{{Industry: "Energy", Value: 100}}
	for i := 0; i < 3; i++ {
		if _, err := c.Diversity(context.Background(), req); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if hits != 1 {
		t.Errorf("expected 1 backend hit with identical payload, got %d", hits)
	}

	if _, err := c.Diversity(context.Background(), []IndustryValue{{Industry: "Tech", Value: 5}}); err != nil {
		t.Fatalf("different payload: %v", err)
	}
	if hits != 2 {
		t.Errorf("different payload must miss the cache, got %d hits", hits)
	}
}

func TestClient_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, time.Minute)
	if err := c.SaveHoldings(context.Background(), nil); err == nil {
		t.Error("expected error on 500 response")
	}
}

func TestOpaqueEndpoints(t *testing.T) {
	paths := make(map[string]bool)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths[r.URL.Path] = true
		w.Write([]byte(`{"whatever": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, time.Minute)
	ctx := context.Background()
	holdings := []model.Holding{{Symbol: "VTI"}}

	if _, err := c.OptimizeFromHoldings(ctx, holdings); err != nil {
		t.Errorf("optimize: %v", err)
	}
	if _, err := c.VolatilityAnalysis(ctx, holdings); err != nil {
		t.Errorf("volatility: %v", err)
	}
	if _, err := c.SimulateAdd(ctx, map[string]string{"symbol": "SPY"}); err != nil {
		t.Errorf("simulate-add: %v", err)
	}
	if _, err := c.ListStocks(ctx); err != nil {
		t.Errorf("stocks: %v", err)
	}

	for _, want := range []string{"/api/optimize-from-holdings", "/api/volatality_anal", "/api/simulate-add", "/api/stocks"} {
		if !paths[want] {
			t.Errorf("endpoint %s was not called", want)
		}
	}
}
