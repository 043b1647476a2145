package repositories

import (
	"context"

	"github.com/TejPotu/case-twin/internal/domain/entities"
)

// CaseSearchRepository is the vector index of historical cases used for twin
// matching.
type CaseSearchRepository interface {
	// InitSchema ensures the case collection exists.
	InitSchema(ctx context.Context) error

	// Index upserts a case document, embedding included.
	Index(ctx context.Context, doc *entities.CaseDocument) error

	// SearchByVector returns the nearest cases to the given image embedding.
	SearchByVector(ctx context.Context, embedding []float32, limit int) ([]*entities.TwinCase, error)

	// Delete removes a case from the index.
	Delete(ctx context.Context, id string) error
}
