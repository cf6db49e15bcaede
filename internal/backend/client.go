package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"FolioScraper/internal/model"
)

// Client talks to the analytics backend. Every call here is a best-effort
// side channel for the extraction pipeline; failures are the caller's to log,
// never to surface to the extraction response.
type Client struct {
	BaseURL string
	Client  *http.Client
	cache   *gocache.Cache
}

// NewClient creates a backend client with optional proxy support and a TTL
// cache for diversity responses.
func NewClient(baseURL, proxyURL string, timeout, cacheTTL time.Duration) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Client{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		cache: gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// IndustryValue is one entry of a diversity request.
type IndustryValue struct {
	Industry string  `json:"industry"`
	Value    float64 `json:"value"`
}

// IndustrySlice is one row of the diversity breakdown.
type IndustrySlice struct {
	Industry  string  `json:"industry"`
	Value     float64 `json:"value"`
	WeightPct float64 `json:"weight_pct"`
}

// DiversityMetrics are the backend's concentration statistics.
type DiversityMetrics struct {
	HHI                  float64 `json:"hhi"`
	Entropy              float64 `json:"entropy"`
	EffectiveIndustries  float64 `json:"effective_industries"`
	TopIndustryWeightPct float64 `json:"top_industry_weight_pct"`
	Rating               string  `json:"rating"`
}

// DiversityReport is the full diversity response.
type DiversityReport struct {
	TotalValue        float64          `json:"total_value"`
	IndustryBreakdown []IndustrySlice  `json:"industry_breakdown"`
	Metrics           DiversityMetrics `json:"metrics"`
}

// SaveHoldings posts an extraction result for persistence. Fire-and-forget;
// the response body is ignored.
func (c *Client) SaveHoldings(ctx context.Context, holdings []model.Holding) error {
	_, err := c.postJSON(ctx, "/api/save-holdings", map[string]any{"data": holdings})
	return err
}

// Diversity computes the industry concentration report for the given
// holdings. Responses are cached by request payload for the configured TTL.
func (c *Client) Diversity(ctx context.Context, holdings []IndustryValue) (*DiversityReport, error) {
	body := map[string]any{"holdings": holdings}
	key, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal diversity request: %w", err)
	}
	if cached, ok := c.cache.Get(string(key)); ok {
		report := cached.(DiversityReport)
		return &report, nil
	}

	raw, err := c.postJSON(ctx, "/api/diversity", body)
	if err != nil {
		return nil, err
	}
	var report DiversityReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode diversity response: %w", err)
	}
	c.cache.SetDefault(string(key), report)
	return &report, nil
}

// OptimizeFromHoldings requests a portfolio optimization. The response is
// passed through opaquely.
func (c *Client) OptimizeFromHoldings(ctx context.Context, holdings []model.Holding) (json.RawMessage, error) {
	return c.postJSON(ctx, "/api/optimize-from-holdings", map[string]any{"data": holdings})
}

// VolatilityAnalysis requests a volatility analysis. Endpoint spelling
// follows the backend.
func (c *Client) VolatilityAnalysis(ctx context.Context, holdings []model.Holding) (json.RawMessage, error) {
	return c.postJSON(ctx, "/api/volatality_anal", map[string]any{"data": holdings})
}

// SimulateAdd simulates adding a position to the portfolio.
func (c *Client) SimulateAdd(ctx context.Context, body any) (json.RawMessage, error) {
	return c.postJSON(ctx, "/api/simulate-add", body)
}

// ListStocks fetches the backend's known stock universe.
func (c *Client) ListStocks(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/stocks", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return c.do(req)
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
