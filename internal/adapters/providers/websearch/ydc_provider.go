// Package websearch provides WebSearchProvider implementations for hospital
// discovery.
package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/TejPotu/case-twin/internal/domain/providers"
)

const (
	defaultSearchURL   = "https://api.ydc-index.io/search"
	defaultHTTPTimeout = 15 * time.Second
)

// YDCProvider queries the You.com index search API.
type YDCProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewYDCProvider creates a new You.com web search provider.
func NewYDCProvider(apiKey, baseURL string) (*YDCProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ydc api key is required")
	}
	if baseURL == "" {
		baseURL = defaultSearchURL
	}
	return &YDCProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}, nil
}

type ydcHit struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Snippets    []string `json:"snippets"`
}

type ydcResponse struct {
	Hits []ydcHit `json:"hits"`
}

// Search runs one web search and returns up to count results.
func (p *YDCProvider) Search(ctx context.Context, query string, count int) ([]providers.WebResult, error) {
	if query == "" {
		return nil, errors.New("query is required")
	}
	if count <= 0 {
		count = 10
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("num_web_results", strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("web search returned status %d", resp.StatusCode)
	}

	var payload ydcResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode web search response: %w", err)
	}

	results := make([]providers.WebResult, 0, len(payload.Hits))
	for _, hit := range payload.Hits {
		results = append(results, providers.WebResult{
			Title:       hit.Title,
			URL:         hit.URL,
			Description: hit.Description,
			Snippets:    hit.Snippets,
		})
	}
	return results, nil
}
