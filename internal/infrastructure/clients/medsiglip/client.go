// Package medsiglip is a raw HTTP client for the MedSigLIP image embedding
// endpoint. It implements the domain EmbeddingProvider port.
package medsiglip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/TejPotu/case-twin/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Client implements the MedSigLIP embedding provider.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a new MedSigLIP client.
func NewClient(cfg *config.HuggingFaceConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("huggingface api key is required")
	}
	if cfg.EmbeddingEndpoint == "" {
		return nil, errors.New("embedding endpoint is required")
	}

	model := cfg.EmbeddingModel
	if model == "" {
		model = "medsiglip-448"
	}

	return &Client{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: cfg.EmbeddingEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type embeddingRequest struct {
	Inputs struct {
		Image string `json:"image"`
	} `json:"inputs"`
}

// EmbedImage returns the embedding vector for one image.
func (c *Client) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	if len(image) == 0 {
		return nil, errors.New("image is required")
	}

	var payload embeddingRequest
	payload.Inputs.Image = base64.StdEncoding.EncodeToString(image)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordEmbeddingMetric(ctx, c.model, 0, time.Since(start), err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		recordEmbeddingMetric(ctx, c.model, resp.StatusCode, time.Since(start), fmt.Errorf("status %d", resp.StatusCode))
		return nil, fmt.Errorf("medsiglip request failed with status %d", resp.StatusCode)
	}

	// The endpoint returns either a flat vector or a batch of one.
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		recordEmbeddingMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	var vector []float32
	if err := json.Unmarshal(raw, &vector); err != nil {
		var batch [][]float32
		if err := json.Unmarshal(raw, &batch); err != nil || len(batch) == 0 {
			decodeErr := errors.New("medsiglip response is not an embedding vector")
			recordEmbeddingMetric(ctx, c.model, resp.StatusCode, time.Since(start), decodeErr)
			return nil, decodeErr
		}
		vector = batch[0]
	}

	if len(vector) == 0 {
		emptyErr := errors.New("medsiglip returned an empty embedding")
		recordEmbeddingMetric(ctx, c.model, resp.StatusCode, time.Since(start), emptyErr)
		return nil, emptyErr
	}

	recordEmbeddingMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	return vector, nil
}

type embeddingMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

var embeddingMetricsOnce sync.Once
var embeddingMetricsInit = false
var embeddingMetricsSet embeddingMetrics

func ensureEmbeddingMetrics() {
	embeddingMetricsOnce.Do(initEmbeddingMetrics)
}

func initEmbeddingMetrics() {
	meter := otel.Meter("github.com/TejPotu/case-twin/medsiglip")

	requestCount, err := meter.Int64Counter(
		"ai.medsiglip.request.count",
		metric.WithDescription("Number of MedSigLIP requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.medsiglip.request.duration",
		metric.WithDescription("MedSigLIP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.medsiglip.request.errors",
		metric.WithDescription("Number of MedSigLIP request errors"),
	)
	if err != nil {
		return
	}

	embeddingMetricsSet = embeddingMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
	}
	embeddingMetricsInit = true
}

func recordEmbeddingMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureEmbeddingMetrics()
	if !embeddingMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "medsiglip"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	embeddingMetricsSet.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	embeddingMetricsSet.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		embeddingMetricsSet.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
