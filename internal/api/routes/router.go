package routes

import (
	"net/http"

	"github.com/TejPotu/case-twin/internal/api/handlers"
	"github.com/TejPotu/case-twin/internal/api/middleware"
	"github.com/TejPotu/case-twin/internal/infrastructure/observability"
)

// Router holds all route handlers

type Router struct {
	mux *http.ServeMux

	intakeHandler *handlers.IntakeHandler

	twinSearchHandler *handlers.TwinSearchHandler

	hospitalHandler   *handlers.HospitalHandler
	specialistHandler *handlers.SpecialistHandler

	caseChatHandler       *handlers.CaseChatHandler
	insightCompareHandler *handlers.InsightCompareHandler

	profileEnrichmentHandler *handlers.ProfileEnrichmentHandler
	selectionExplainHandler  *handlers.SelectionExplainHandler

	sseHandler *handlers.SSEHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router

func NewRouter(

	intakeHandler *handlers.IntakeHandler,

	twinSearchHandler *handlers.TwinSearchHandler,

	hospitalHandler *handlers.HospitalHandler,
	specialistHandler *handlers.SpecialistHandler,

	caseChatHandler *handlers.CaseChatHandler,
	insightCompareHandler *handlers.InsightCompareHandler,

	profileEnrichmentHandler *handlers.ProfileEnrichmentHandler,
	selectionExplainHandler *handlers.SelectionExplainHandler,

	sseHandler *handlers.SSEHandler,

	metrics *observability.Metrics,

) *Router {

	return &Router{

		mux: http.NewServeMux(),

		intakeHandler: intakeHandler,

		twinSearchHandler: twinSearchHandler,

		hospitalHandler:   hospitalHandler,
		specialistHandler: specialistHandler,

		caseChatHandler:       caseChatHandler,
		insightCompareHandler: insightCompareHandler,

		profileEnrichmentHandler: profileEnrichmentHandler,
		selectionExplainHandler:  selectionExplainHandler,

		sseHandler: sseHandler,

		metrics: metrics,
	}

}

// SetupRoutes configures all application routes

func (r *Router) SetupRoutes() http.Handler {

	// Health check endpoint

	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {

		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}

	})

	// Intake session endpoints

	r.mux.HandleFunc("POST /api/intake/sessions", r.intakeHandler.CreateSession)

	r.mux.HandleFunc("GET /api/intake/sessions/{id}", r.intakeHandler.GetSession)

	r.mux.HandleFunc("POST /api/intake/sessions/{id}/turns", r.intakeHandler.ProcessTurn)

	r.mux.HandleFunc("DELETE /api/intake/sessions/{id}", r.intakeHandler.DeleteSession)

	// Twin search and comparison endpoints

	r.mux.HandleFunc("POST /api/twins/search", r.twinSearchHandler.SearchTwins)

	r.mux.HandleFunc("POST /api/twins/chat", r.caseChatHandler.ChatTwin)

	r.mux.HandleFunc("POST /api/twins/compare", r.insightCompareHandler.CompareInsights)

	// Hospital routing and page-analysis endpoints

	r.mux.HandleFunc("POST /api/hospitals/search", r.hospitalHandler.SearchHospitals)

	r.mux.HandleFunc("POST /api/hospitals/specialists", r.specialistHandler.AnalyzeHospitalPage)

	// Profile augmentation endpoints

	r.mux.HandleFunc("POST /api/profile/enhance", r.profileEnrichmentHandler.EnhanceProfile)

	r.mux.HandleFunc("POST /api/explain", r.selectionExplainHandler.ExplainSelection)

	// Streaming endpoints for intake progress
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/stream/sessions/{id}", r.sseHandler.StreamSessionUpdates)
		r.mux.HandleFunc("GET /api/stream/ready", r.sseHandler.StreamCaseReady)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so every response gets CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on streamed responses
	handler = middleware.CORSMiddleware(handler)

	return handler
}
