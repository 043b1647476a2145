package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/TejPotu/case-twin/internal/application/services"
	"github.com/TejPotu/case-twin/internal/domain/entities"
)

// maxSearchUploadBytes caps the query image upload.
const maxSearchUploadBytes = 16 << 20

// TwinSearchHandler handles twin case search HTTP requests
type TwinSearchHandler struct {
	twinSearch *services.TwinSearchService
}

// NewTwinSearchHandler creates a new twin search handler
func NewTwinSearchHandler(twinSearch *services.TwinSearchService) *TwinSearchHandler {
	return &TwinSearchHandler{
		twinSearch: twinSearch,
	}
}

// SearchTwins handles POST /api/twins/search
//
// Multipart form data: an "image" part with the study to match, an optional
// "profile" field carrying the current case profile as JSON, and an optional
// "limit" field.
func (h *TwinSearchHandler) SearchTwins(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSearchUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "could not parse multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "image file is required")
		return
	}
	image, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "could not read image file")
		return
	}

	var profile *entities.CaseProfile
	if raw := r.FormValue("profile"); raw != "" {
		profile = &entities.CaseProfile{}
		if err := json.Unmarshal([]byte(raw), profile); err != nil {
			respondWithError(w, http.StatusBadRequest, "profile field is not valid JSON")
			return
		}
	}

	limit := 0
	if raw := r.FormValue("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
	}

	twins, err := h.twinSearch.Search(r.Context(), image, profile, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"matches": twins,
		"count":   len(twins),
	})
}
