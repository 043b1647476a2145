package providers

import (
	"context"
	"errors"

	"github.com/TejPotu/case-twin/internal/domain/entities"
)

// ErrExtractionUnavailable marks a legitimate external failure of the
// extraction capability. The turn processor falls back to the previous record
// on this class of error; programming errors are not wrapped with it.
var ErrExtractionUnavailable = errors.New("extraction capability unavailable")

// ExtractionInput is one turn's worth of raw material: uploaded images, free
// text, and at most one notes document.
type ExtractionInput struct {
	Images []entities.FileRef
	Dicoms []entities.FileRef
	Text   string
	Notes  *entities.FileRef
}

// ExtractionProvider converts unstructured input into a partially filled case
// profile. Implementations may call a hosted model, run local heuristics, or
// stub the capability entirely; the orchestrator does not care which.
type ExtractionProvider interface {
	Extract(ctx context.Context, input ExtractionInput) (*entities.CaseProfile, error)
}
