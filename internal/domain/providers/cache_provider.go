package providers

import (
	"context"
)

// CacheProvider is the cache-aside layer used for geocoding results, route
// ETAs, and image embeddings.
type CacheProvider interface {
	// Get retrieves a value from cache.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with an expiration in seconds.
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, key string) error

	// Exists checks whether a key is present.
	Exists(ctx context.Context, key string) (bool, error)
}
