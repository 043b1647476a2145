package evaluation

import "time"

// GoldenCase represents a labeled intake note with its expected extraction.
// Expected maps flattened field paths (e.g. "patient.sex") to the value the
// extractor should produce for the note.
type GoldenCase struct {
	ID         string            `json:"id"`
	Note       string            `json:"note"`
	Expected   map[string]string `json:"expected"`
	Difficulty string            `json:"difficulty"` // easy, medium, hard
}

// CaseResult holds the evaluation outcome for a single golden case.
type CaseResult struct {
	CaseID         string
	FieldAccuracy  float64
	FieldCoverage  float64
	MatchedFields  int
	ExpectedFields int
	Completeness   int
	Latency        time.Duration
	Mismatches     []string
}

// EvalSummary holds aggregate metrics across all golden cases.
type EvalSummary struct {
	TotalCases      int
	AvgAccuracy     float64
	AvgCoverage     float64
	AvgCompleteness float64
	AvgLatency      time.Duration
	FailedCases     int // cases where extraction returned an error
	ByDifficulty    map[string]*DifficultySummary
}

// DifficultySummary holds metrics grouped by difficulty bucket.
type DifficultySummary struct {
	Count       int
	AvgAccuracy float64
	AvgCoverage float64
}
