package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/TejPotu/case-twin/internal/application/services"
	"github.com/TejPotu/case-twin/internal/domain/entities"
)

// HospitalHandler handles hospital routing HTTP requests
type HospitalHandler struct {
	routing *services.HospitalRoutingService
}

// NewHospitalHandler creates a new hospital handler
func NewHospitalHandler(routing *services.HospitalRoutingService) *HospitalHandler {
	return &HospitalHandler{
		routing: routing,
	}
}

// SearchHospitals handles POST /api/hospitals/search
func (h *HospitalHandler) SearchHospitals(w http.ResponseWriter, r *http.Request) {
	var query entities.HospitalQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	centers, err := h.routing.FindCenters(r.Context(), query)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"centers": centers,
	})
}
