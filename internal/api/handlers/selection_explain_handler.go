package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/TejPotu/case-twin/internal/application/services"
)

// SelectionExplainHandler handles phrase explanation HTTP requests
type SelectionExplainHandler struct {
	explain *services.SelectionExplainService
}

// NewSelectionExplainHandler creates a new selection explain handler
func NewSelectionExplainHandler(explain *services.SelectionExplainService) *SelectionExplainHandler {
	return &SelectionExplainHandler{
		explain: explain,
	}
}

type explainRequest struct {
	SelectedText string `json:"selected_text"`
	Context      string `json:"context"`
}

// ExplainSelection handles POST /api/explain
func (h *SelectionExplainHandler) ExplainSelection(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	explanation, err := h.explain.Explain(r.Context(), req.SelectedText, req.Context)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"explanation": explanation,
	})
}
