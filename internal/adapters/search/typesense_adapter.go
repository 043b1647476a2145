package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/domain/repositories"
	tsclient "github.com/TejPotu/case-twin/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements the case vector index using Typesense.
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements CaseSearchRepository
var _ repositories.CaseSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the cases collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// Index upserts a case document
func (a *TypesenseAdapter) Index(ctx context.Context, doc *entities.CaseDocument) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("case document with id is required")
	}
	if len(doc.Embedding) == 0 {
		return fmt.Errorf("case document embedding is required")
	}

	document := map[string]interface{}{
		"id":          doc.ID,
		"case_id":     doc.CaseID,
		"diagnosis":   doc.DiagnosisPrimary,
		"modality":    doc.Modality,
		"body_region": doc.BodyRegion,
		"case_text":   doc.OneLiner,
		"image_url":   doc.ImageURL,
		"embedding":   doc.Embedding,
		"created_at":  doc.CreatedAt,
	}
	if profileJSON := marshalProfileFields(doc); profileJSON != "" {
		document["profile_json"] = profileJSON
	}

	return a.client.IndexCase(ctx, document)
}

// SearchByVector returns the nearest cases to the given embedding, ordered by
// vector similarity.
func (a *TypesenseAdapter) SearchByVector(ctx context.Context, embedding []float32, limit int) ([]*entities.TwinCase, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedding is required")
	}
	if limit <= 0 {
		limit = 10
	}

	vectorQuery := buildVectorQuery(embedding, limit)
	params := &api.SearchCollectionParams{
		Q:           pointer.String("*"),
		QueryBy:     pointer.String("case_text"),
		VectorQuery: pointer.String(vectorQuery),
		PerPage:     pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(a.client.Collection()).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	if result.Hits == nil {
		return []*entities.TwinCase{}, nil
	}

	cases := make([]*entities.TwinCase, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		twin := documentToTwinCase(*hit.Document)
		if hit.VectorDistance != nil {
			// Cosine distance; similarity in [0,1] for normalized vectors.
			similarity := 1 - float64(*hit.VectorDistance)
			twin.Score = similarity
			twin.ScoreBreakdown = map[string]float64{"image_similarity": similarity}
		}
		cases = append(cases, twin)
	}
	return cases, nil
}

// Delete removes a case from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(a.client.Collection()).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete case %s: %w", id, err)
	}
	return nil
}

func buildVectorQuery(embedding []float32, k int) string {
	var b strings.Builder
	b.WriteString("embedding:([")
	for i, v := range embedding {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteString("], k:")
	b.WriteString(strconv.Itoa(k))
	b.WriteString(")")
	return b.String()
}

func documentToTwinCase(doc map[string]interface{}) *entities.TwinCase {
	twin := &entities.TwinCase{
		ID:               stringField(doc, "id"),
		CaseID:           stringField(doc, "case_id"),
		DiagnosisPrimary: stringField(doc, "diagnosis"),
		OneLiner:         stringField(doc, "case_text"),
		Modality:         stringField(doc, "modality"),
		BodyRegion:       stringField(doc, "body_region"),
		ImageURL:         stringField(doc, "image_url"),
	}

	// Demographics ride along in the profile payload.
	if raw := stringField(doc, "profile_json"); raw != "" {
		var extra struct {
			AgeYears int      `json:"age_years"`
			Sex      string   `json:"sex"`
			Tags     []string `json:"tags"`
		}
		if err := json.Unmarshal([]byte(raw), &extra); err == nil {
			twin.AgeYears = extra.AgeYears
			twin.Sex = extra.Sex
			twin.Tags = extra.Tags
		}
	}
	return twin
}

func marshalProfileFields(doc *entities.CaseDocument) string {
	payload := map[string]interface{}{
		"age_years": doc.AgeYears,
		"sex":       doc.Sex,
		"tags":      doc.Tags,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(data)
}

func stringField(doc map[string]interface{}, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}
