package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TejPotu/case-twin/internal/api/handlers"
	"github.com/TejPotu/case-twin/internal/application/services"
	"github.com/TejPotu/case-twin/internal/domain/entities"
)

type hospitalSearchResponse struct {
	Centers []entities.CareCenter `json:"centers"`
}

func TestHospitalHandler_MissingDiagnosis(t *testing.T) {
	handler := handlers.NewHospitalHandler(services.NewHospitalRoutingService(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/hospitals/search", strings.NewReader(`{"location": "Orlando, FL"}`))
	rec := httptest.NewRecorder()
	handler.SearchHospitals(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHospitalHandler_InvalidBody(t *testing.T) {
	handler := handlers.NewHospitalHandler(services.NewHospitalRoutingService(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/hospitals/search", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	handler.SearchHospitals(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHospitalHandler_FallbackCentersWithoutSearchProvider(t *testing.T) {
	handler := handlers.NewHospitalHandler(services.NewHospitalRoutingService(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/hospitals/search", strings.NewReader(`{"diagnosis": "lung abscess"}`))
	rec := httptest.NewRecorder()
	handler.SearchHospitals(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp hospitalSearchResponse
	require.NoError(t, decodeBody(rec, &resp))
	require.Len(t, resp.Centers, 3)
	assert.Equal(t, "Mayo Clinic - Rochester", resp.Centers[0].Name)
	assert.Contains(t, resp.Centers[0].Reason, "lung abscess")
}
