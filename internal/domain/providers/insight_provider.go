package providers

import "context"

// InsightRequest is a single multimodal generation call. Image may be nil for
// text-only prompts.
type InsightRequest struct {
	Image         []byte
	Prompt        string
	MaxTokens     int
	StopSequences []string
}

// InsightProvider is the medical multimodal model consumed by extraction,
// twin chat, insight comparison, enrichment, and selection explanation.
type InsightProvider interface {
	GenerateInsight(ctx context.Context, req InsightRequest) (string, error)
}

// EmbeddingProvider produces image embeddings for twin-case similarity search.
type EmbeddingProvider interface {
	EmbedImage(ctx context.Context, image []byte) ([]float32, error)
}
