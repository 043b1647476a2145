package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/TejPotu/case-twin/internal/application/services"
	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/domain/repositories"
	apperrors "github.com/TejPotu/case-twin/pkg/errors"
)

// maxTurnUploadBytes caps a single turn's multipart payload (images plus
// notes files).
const maxTurnUploadBytes = 32 << 20

// IntakeHandler handles intake session HTTP requests
type IntakeHandler struct {
	sessions repositories.SessionRepository
	intake   *services.IntakeService
}

// NewIntakeHandler creates a new intake handler
func NewIntakeHandler(sessions repositories.SessionRepository, intake *services.IntakeService) *IntakeHandler {
	return &IntakeHandler{
		sessions: sessions,
		intake:   intake,
	}
}

// CreateSession handles POST /api/intake/sessions
func (h *IntakeHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.sessions.Create(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, state)
}

// GetSession handles GET /api/intake/sessions/{id}
func (h *IntakeHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	state, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// ProcessTurn handles POST /api/intake/sessions/{id}/turns
//
// The turn arrives as multipart form data: a "text" field plus any number of
// "files" parts (images, DICOM studies, notes documents).
func (h *IntakeHandler) ProcessTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	input, err := parseTurnInput(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.sessions.Update(r.Context(), sessionID, func(current *entities.IntakeState) (*entities.IntakeState, error) {
		return h.intake.ProcessTurn(r.Context(), current, input)
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// DeleteSession handles DELETE /api/intake/sessions/{id}
func (h *IntakeHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	if err := h.sessions.Delete(r.Context(), sessionID); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func parseTurnInput(r *http.Request) (services.TurnInput, error) {
	var input services.TurnInput

	if err := r.ParseMultipartForm(maxTurnUploadBytes); err != nil {
		return input, err
	}
	input.Text = r.FormValue("text")

	if r.MultipartForm == nil {
		return input, nil
	}
	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			return input, err
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return input, err
		}
		input.Files = append(input.Files, entities.FileRef{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        data,
		})
	}
	return input, nil
}

// Helper functions

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps a service error to an HTTP status.
func respondWithAppError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeUnavailable:
			respondWithError(w, http.StatusServiceUnavailable, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}
