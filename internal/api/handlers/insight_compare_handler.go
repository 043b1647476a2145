package handlers

import (
	"io"
	"net/http"

	"github.com/TejPotu/case-twin/internal/application/services"
)

// InsightCompareHandler handles study comparison HTTP requests
type InsightCompareHandler struct {
	compare *services.InsightCompareService
}

// NewInsightCompareHandler creates a new insight compare handler
func NewInsightCompareHandler(compare *services.InsightCompareService) *InsightCompareHandler {
	return &InsightCompareHandler{
		compare: compare,
	}
}

// CompareInsights handles POST /api/twins/compare
//
// Multipart form data: an "original_image" part, a "match_diagnosis" field,
// and optional "match_image_url" and "match_payload" fields.
func (h *InsightCompareHandler) CompareInsights(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSearchUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "could not parse multipart form")
		return
	}

	file, _, err := r.FormFile("original_image")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "original_image file is required")
		return
	}
	image, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "could not read original image")
		return
	}

	req := services.CompareRequest{
		OriginalImage:  image,
		MatchDiagnosis: r.FormValue("match_diagnosis"),
		MatchImageURL:  r.FormValue("match_image_url"),
	}
	if payload := r.FormValue("match_payload"); payload != "" {
		req.MatchPayload = []byte(payload)
	}

	insight, err := h.compare.Compare(r.Context(), req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, insight)
}
