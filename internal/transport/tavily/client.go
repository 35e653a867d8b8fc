// Package tavily is a minimal client for the Tavily-style web search JSON API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kailas-cloud/askgate/internal/domain"
)

const defaultBaseURL = "https://api.tavily.com"

// Config holds the web-search provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client calls the web search API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a web search client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{apiKey: cfg.APIKey, baseURL: baseURL, http: httpClient}
}

// Request is one search call.
type Request struct {
	Query       string
	MaxResults  int
	SearchDepth string // "basic" or "advanced"
}

// Result is a single ranked hit. Score is provider-defined; absent scores
// decode to 0.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth,omitempty"`
	MaxResults  int    `json:"max_results,omitempty"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Search runs one search call against the provider.
func (c *Client) Search(ctx context.Context, req Request) ([]Result, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:      c.apiKey,
		Query:       req.Query,
		SearchDepth: req.SearchDepth,
		MaxResults:  req.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("web search call: %w: %w", domain.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w: %w", domain.ErrBackendBadPayload, err)
	}

	return parsed.Results, nil
}

// statusError maps non-200 responses to domain sentinels.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = domain.ErrBackendUnauthorized
	case http.StatusTooManyRequests:
		sentinel = domain.ErrBackendRateLimited
	default:
		sentinel = domain.ErrBackendUnavailable
	}

	return fmt.Errorf("web search API status %d: %s: %w", resp.StatusCode, string(body), sentinel)
}
