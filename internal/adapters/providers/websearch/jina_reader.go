package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultReaderURL     = "https://r.jina.ai/"
	defaultReaderTimeout = 35 * time.Second

	// readerContentLimit keeps rendered pages within model context limits.
	readerContentLimit = 6000
)

// JinaReader reads web pages through the Jina reader proxy, which renders
// JavaScript before returning markdown. Hospital directory and physician
// profile pages are usually script-rendered and unreadable by a plain GET.
type JinaReader struct {
	baseURL    string
	httpClient *http.Client
}

// NewJinaReader creates a new page reader.
func NewJinaReader(baseURL string) *JinaReader {
	if baseURL == "" {
		baseURL = defaultReaderURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &JinaReader{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultReaderTimeout,
		},
	}
}

// ReadPage fetches one page as markdown, truncated to a model-safe length.
func (r *JinaReader) ReadPage(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		return "", fmt.Errorf("page url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create reader request: %w", err)
	}
	req.Header.Set("Accept", "text/markdown")
	req.Header.Set("X-Return-Format", "markdown")
	req.Header.Set("X-Timeout", "30")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reader request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reader returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, readerContentLimit*4))
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}

	content := strings.TrimSpace(string(body))
	if len(content) > readerContentLimit {
		content = content[:readerContentLimit] + "\n...[content truncated]"
	}
	return content, nil
}
