package entities

// TwinCase is a historical case returned by the similarity search, paired with
// its ranking score.
type TwinCase struct {
	ID               string             `json:"id"`
	CaseID           string             `json:"case_id"`
	DiagnosisPrimary string             `json:"diagnosis_primary,omitempty"`
	OneLiner         string             `json:"one_liner,omitempty"`
	Modality         string             `json:"modality,omitempty"`
	BodyRegion       string             `json:"body_region,omitempty"`
	AgeYears         int                `json:"age_years,omitempty"`
	Sex              string             `json:"sex,omitempty"`
	ImageURL         string             `json:"image_url,omitempty"`
	Tags             []string           `json:"tags,omitempty"`
	Score            float64            `json:"score"`
	ScoreBreakdown   map[string]float64 `json:"score_breakdown,omitempty"`
}

// CaseDocument is a twin case as stored in the search index, including its
// image embedding.
type CaseDocument struct {
	ID               string    `json:"id"`
	CaseID           string    `json:"case_id"`
	DiagnosisPrimary string    `json:"diagnosis_primary"`
	OneLiner         string    `json:"one_liner"`
	Modality         string    `json:"modality"`
	BodyRegion       string    `json:"body_region"`
	AgeYears         int       `json:"age_years"`
	Sex              string    `json:"sex"`
	ImageURL         string    `json:"image_url"`
	Tags             []string  `json:"tags"`
	Embedding        []float32 `json:"embedding"`
	CreatedAt        int64     `json:"created_at"`
}
