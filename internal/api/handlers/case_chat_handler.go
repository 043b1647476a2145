package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/TejPotu/case-twin/internal/application/services"
	"github.com/TejPotu/case-twin/internal/domain/entities"
)

// CaseChatHandler handles twin case chat HTTP requests
type CaseChatHandler struct {
	chat *services.CaseChatService
}

// NewCaseChatHandler creates a new case chat handler
func NewCaseChatHandler(chat *services.CaseChatService) *CaseChatHandler {
	return &CaseChatHandler{
		chat: chat,
	}
}

type chatRequest struct {
	Query    string                `json:"query"`
	CaseText string                `json:"case_text"`
	Profile  *entities.CaseProfile `json:"profile,omitempty"`
}

// ChatTwin handles POST /api/twins/chat
func (h *CaseChatHandler) ChatTwin(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.chat.Answer(r.Context(), req.Query, req.CaseText, req.Profile)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"reply": reply,
	})
}
