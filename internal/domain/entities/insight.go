package entities

// BoundingBox is [ymin, xmin, ymax, xmax] on a 0-1000 normalized grid, the
// coordinate convention the vision model emits.
type BoundingBox [4]int

// CompareInsight is the result of comparing the uploaded study against a
// matched twin case.
type CompareInsight struct {
	InsightsText string       `json:"insights_text"`
	OriginalBox  *BoundingBox `json:"original_box,omitempty"`
	MatchBox     *BoundingBox `json:"match_box,omitempty"`
}

// ProfileEnrichment is the AI clinical synthesis generated for a profile,
// with an optional imaging-context section when an image was provided.
type ProfileEnrichment struct {
	Synthesis      string  `json:"synthesis"`
	ImagingContext *string `json:"imaging_context"`
}
