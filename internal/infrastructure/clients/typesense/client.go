package typesense

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/TejPotu/case-twin/pkg/config"
	"github.com/TejPotu/case-twin/pkg/retry"
)

const (
	// DefaultCasesCollection is the collection holding indexed historical cases.
	DefaultCasesCollection = "cases"

	// EmbeddingDimensions is the vector size produced by the image embedding model.
	EmbeddingDimensions = 448
)

// Client represents a Typesense client
type Client struct {
	client     *typesense.Client
	collection string
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	// Test connection with retry
	retryConfig := retry.DefaultConfig()
	err := retry.DoWithLog(
		context.Background(),
		retryConfig,
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Printf("Typesense connection attempt %d failed: %v. Retrying in %v...", attempt, err, nextDelay)
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCasesCollection
	}

	log.Println("Successfully connected to Typesense")
	return &Client{client: client, collection: collection}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// Collection returns the name of the cases collection
func (c *Client) Collection() string {
	return c.collection
}

// InitSchema ensures the cases collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == c.collection {
			log.Printf("Typesense collection '%s' already exists", c.collection)
			return nil
		}
	}

	schema := &api.CollectionSchema{
		Name: c.collection,
		Fields: []api.Field{
			{
				Name: "id",
				Type: "string",
			},
			{
				Name: "case_id",
				Type: "string",
			},
			{
				Name:     "diagnosis",
				Type:     "string",
				Facet:    pointer.True(),
				Optional: pointer.True(),
			},
			{
				Name:     "modality",
				Type:     "string",
				Facet:    pointer.True(),
				Optional: pointer.True(),
			},
			{
				Name:     "body_region",
				Type:     "string",
				Facet:    pointer.True(),
				Optional: pointer.True(),
			},
			{
				Name:     "case_text",
				Type:     "string",
				Optional: pointer.True(),
			},
			{
				Name:     "image_url",
				Type:     "string",
				Optional: pointer.True(),
			},
			{
				Name:     "profile_json",
				Type:     "string",
				Optional: pointer.True(),
			},
			{
				Name:   "embedding",
				Type:   "float[]",
				NumDim: pointer.Int(EmbeddingDimensions),
			},
			{
				Name: "created_at",
				Type: "int64",
			},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = c.client.Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("Created Typesense collection '%s'", c.collection)
	return nil
}

// IndexCase indexes a case document
func (c *Client) IndexCase(ctx context.Context, document map[string]interface{}) error {
	_, err := c.client.Collection(c.collection).Documents().Upsert(ctx, document)
	return err
}
