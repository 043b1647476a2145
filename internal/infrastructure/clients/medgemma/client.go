// Package medgemma is a raw HTTP client for the MedGemma vision-language
// inference endpoint. It implements the domain InsightProvider port.
package medgemma

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

	"github.com/TejPotu/case-twin/internal/domain/providers"
)

// Client implements the MedGemma insight provider.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewClient creates a new MedGemma client.
func NewClient(cfg *config.HuggingFaceConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("huggingface api key is required")
	}
	if cfg.InsightEndpoint == "" {
		return nil, errors.New("insight endpoint is required")
	}

	model := cfg.InsightModel
	if model == "" {
		model = "medgemma-4b-it"
	}

	limiter := newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst)

	return &Client{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: cfg.InsightEndpoint,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: limiter,
	}, nil
}

type inferenceInputs struct {
	Image  string `json:"image,omitempty"`
	Prompt string `json:"prompt"`
}

type inferenceParameters struct {
	MaxNewTokens  int      `json:"max_new_tokens,omitempty"`
	StopSequences []string `json:"stop,omitempty"`
}

type inferenceRequest struct {
	Inputs     inferenceInputs     `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceOutput struct {
	GeneratedText string `json:"generated_text"`
}

// GenerateInsight sends one image+prompt request and returns the raw
// generated text. The caller is responsible for reply cleanup.
func (c *Client) GenerateInsight(ctx context.Context, req providers.InsightRequest) (string, error) {
	if req.Prompt == "" {
		return "", errors.New("prompt is required")
	}

	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordMedGemmaMetric(ctx, c.model, 0, 0, err)
			return "", err
		}
		recordMedGemmaRateLimitWait(ctx, c.model, time.Since(waitStart))
	}

	payload := inferenceRequest{
		Inputs: inferenceInputs{
			Prompt: req.Prompt,
		},
		Parameters: inferenceParameters{
			MaxNewTokens:  req.MaxTokens,
			StopSequences: req.StopSequences,
		},
	}
	if len(req.Image) > 0 {
		payload.Inputs.Image = base64.StdEncoding.EncodeToString(req.Image)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		recordMedGemmaMetric(ctx, c.model, 0, time.Since(start), err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		recordMedGemmaMetric(ctx, c.model, resp.StatusCode, time.Since(start), fmt.Errorf("status %d", resp.StatusCode))
		return "", fmt.Errorf("medgemma request failed with status %d", resp.StatusCode)
	}

	var outputs []inferenceOutput
	if err := json.NewDecoder(resp.Body).Decode(&outputs); err != nil {
		recordMedGemmaMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	if len(outputs) == 0 || outputs[0].GeneratedText == "" {
		recordMedGemmaMetric(ctx, c.model, resp.StatusCode, time.Since(start), errors.New("missing generated text"))
		return "", errors.New("medgemma response missing generated text")
	}

	recordMedGemmaMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	return outputs[0].GeneratedText, nil
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm == 0 {
		rpm = 60
	}
	if rpm < 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}
	return newTokenBucketWithRate(rpm, burst)
}

type tokenBucket struct {
	tokens chan struct{}
}

func newTokenBucketWithRate(rpm int, burst int) *tokenBucket {
	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
	}

	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			select {
			case bucket.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return bucket
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

type medGemmaMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var medgemmaMetricsOnce sync.Once
var medgemmaMetricsInit = false
var medgemmaMetrics medGemmaMetrics

func ensureMedGemmaMetrics() {
	medgemmaMetricsOnce.Do(initMedGemmaMetrics)
}

func initMedGemmaMetrics() {
	meter := otel.Meter("github.com/TejPotu/case-twin/medgemma")

	requestCount, err := meter.Int64Counter(
		"ai.medgemma.request.count",
		metric.WithDescription("Number of MedGemma requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.medgemma.request.duration",
		metric.WithDescription("MedGemma request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.medgemma.request.errors",
		metric.WithDescription("Number of MedGemma request errors"),
	)
	if err != nil {
		return
	}
	rateLimitWait, err := meter.Float64Histogram(
		"ai.medgemma.rate_limit.wait",
		metric.WithDescription("Time spent waiting for MedGemma rate limiter in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}

	medgemmaMetrics = medGemmaMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
		rateLimitWait:   rateLimitWait,
	}
	medgemmaMetricsInit = true
}

func recordMedGemmaMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureMedGemmaMetrics()
	if !medgemmaMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "medgemma"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	medgemmaMetrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	medgemmaMetrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		medgemmaMetrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordMedGemmaRateLimitWait(ctx context.Context, model string, wait time.Duration) {
	ensureMedGemmaMetrics()
	if !medgemmaMetricsInit {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "medgemma"),
		attribute.String("ai.model", model),
	}
	medgemmaMetrics.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}
