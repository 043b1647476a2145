package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/TejPotu/case-twin/internal/application/services"
	"github.com/TejPotu/case-twin/internal/domain/entities"
)

// ProfileEnrichmentHandler handles clinical synthesis HTTP requests
type ProfileEnrichmentHandler struct {
	enrichment *services.ProfileEnrichmentService
}

// NewProfileEnrichmentHandler creates a new profile enrichment handler
func NewProfileEnrichmentHandler(enrichment *services.ProfileEnrichmentService) *ProfileEnrichmentHandler {
	return &ProfileEnrichmentHandler{
		enrichment: enrichment,
	}
}

// EnhanceProfile handles POST /api/profile/enhance
//
// Multipart form data: a "profile_json" field with the case profile, plus an
// optional "file" part carrying the study image.
func (h *ProfileEnrichmentHandler) EnhanceProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSearchUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "could not parse multipart form")
		return
	}

	raw := r.FormValue("profile_json")
	if raw == "" {
		respondWithError(w, http.StatusBadRequest, "profile_json field is required")
		return
	}
	profile := &entities.CaseProfile{}
	if err := json.Unmarshal([]byte(raw), profile); err != nil {
		respondWithError(w, http.StatusBadRequest, "profile_json is not valid JSON")
		return
	}

	var image []byte
	if file, _, err := r.FormFile("file"); err == nil {
		image, err = io.ReadAll(file)
		file.Close()
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "could not read image file")
			return
		}
	}

	enrichment, err := h.enrichment.Enrich(r.Context(), profile, image)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, enrichment)
}
