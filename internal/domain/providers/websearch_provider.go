package providers

import "context"

// WebResult is one hit from the web-search provider.
type WebResult struct {
	Title       string
	URL         string
	Description string
	Snippets    []string
}

// WebSearchProvider is the hosted web-search API used to discover treatment
// centers for a diagnosis.
type WebSearchProvider interface {
	Search(ctx context.Context, query string, count int) ([]WebResult, error)
}

// PageReader renders a web page, including JavaScript-heavy hospital
// directories, to readable text.
type PageReader interface {
	ReadPage(ctx context.Context, pageURL string) (string, error)
}
