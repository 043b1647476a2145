package typesense

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/TejPotu/case-twin/pkg/config"
)

func TestClient_Integration(t *testing.T) {
	if os.Getenv("TEST_INTEGRATION") != "true" {
		t.Skip("Skipping integration test; set TEST_INTEGRATION=true to run")
	}

	cfg := &config.Config{
		Typesense: config.TypesenseConfig{
			URL:    "http://localhost:8108",
			APIKey: "xyz",
		},
	}

	client, err := NewClient(&cfg.Typesense)
	assert.NoError(t, err)
	assert.NotNil(t, client)

	ctx := context.Background()

	// Test InitSchema
	err = client.InitSchema(ctx)
	assert.NoError(t, err)

	embedding := make([]float64, EmbeddingDimensions)
	embedding[0] = 0.42

	// Test Indexing
	doc := map[string]interface{}{
		"id":          "test-case-1",
		"case_id":     "test-case-1",
		"diagnosis":   "community-acquired pneumonia",
		"modality":    "CXR",
		"body_region": "thorax",
		"case_text":   "52 year old male with productive cough and fever",
		"embedding":   embedding,
		"created_at":  time.Now().Unix(),
	}
	err = client.IndexCase(ctx, doc)
	assert.NoError(t, err)

	// Allow some time for indexing
	time.Sleep(1 * time.Second)
}
