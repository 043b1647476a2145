package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/TejPotu/case-twin/internal/application/services"
	"github.com/TejPotu/case-twin/internal/domain/entities"
)

// SpecialistHandler handles hospital specialist analysis HTTP requests
type SpecialistHandler struct {
	finder *services.SpecialistFinderService
}

// NewSpecialistHandler creates a new specialist handler
func NewSpecialistHandler(finder *services.SpecialistFinderService) *SpecialistHandler {
	return &SpecialistHandler{
		finder: finder,
	}
}

// AnalyzeHospitalPage handles POST /api/hospitals/specialists
func (h *SpecialistHandler) AnalyzeHospitalPage(w http.ResponseWriter, r *http.Request) {
	var query entities.SpecialistQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	specialists, err := h.finder.FindSpecialists(r.Context(), query)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"specialists": specialists,
	})
}
