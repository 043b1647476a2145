package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/TejPotu/case-twin/internal/adapters/cache"
	"github.com/TejPotu/case-twin/internal/adapters/events"
	"github.com/TejPotu/case-twin/internal/adapters/providers/extraction"
	"github.com/TejPotu/case-twin/internal/adapters/providers/geolocation"
	"github.com/TejPotu/case-twin/internal/adapters/providers/websearch"
	"github.com/TejPotu/case-twin/internal/adapters/search"
	"github.com/TejPotu/case-twin/internal/adapters/session"
	"github.com/TejPotu/case-twin/internal/api/handlers"
	"github.com/TejPotu/case-twin/internal/api/routes"
	"github.com/TejPotu/case-twin/internal/application/services"
	"github.com/TejPotu/case-twin/internal/domain/providers"
	"github.com/TejPotu/case-twin/internal/domain/repositories"
	"github.com/TejPotu/case-twin/internal/infrastructure/clients/medgemma"
	"github.com/TejPotu/case-twin/internal/infrastructure/clients/medsiglip"
	"github.com/TejPotu/case-twin/internal/infrastructure/clients/redis"
	"github.com/TejPotu/case-twin/internal/infrastructure/clients/typesense"
	"github.com/TejPotu/case-twin/internal/infrastructure/observability"
	"github.com/TejPotu/case-twin/pkg/config"
)

func main() {

	// Load .env if present, then configuration from the environment
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = "production"
	}
	observability.InitLogger(cfg.OTEL.ServiceName, env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - streaming and caching degrade gracefully
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
	} else {
		log.Println("Typesense client initialized successfully")
	}

	// Initialize adapters

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var caseSearchRepo repositories.CaseSearchRepository

	if typesenseClient != nil {

		adapter := search.NewTypesenseAdapter(typesenseClient)

		// Ensure schema exists

		if err := adapter.InitSchema(context.Background()); err != nil {

			log.Printf("Warning: Failed to init Typesense schema: %v", err)

		}

		caseSearchRepo = adapter

	}

	// Initialize event bus for real-time updates
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	var geolocationProvider providers.GeolocationProvider
	switch cfg.Geolocation.Provider {
	case "nominatim":
		geolocationProvider = geolocation.NewNominatimProvider(
			cfg.Geolocation.NominatimURL,
			cfg.Geolocation.OSRMURL,
			cfg.Geolocation.UserAgent,
			cacheProvider,
		)
	default:
		geolocationProvider = geolocation.NewMockGeolocationProvider()
	}

	var webSearchProvider providers.WebSearchProvider
	if cfg.WebSearch.APIKey == "" {
		log.Println("Warning: YDC_API_KEY is not set; hospital search will use fallback centers")
	} else {
		ydc, err := websearch.NewYDCProvider(cfg.WebSearch.APIKey, cfg.WebSearch.URL)
		if err != nil {
			log.Printf("Warning: Failed to initialize web search provider: %v", err)
		} else {
			webSearchProvider = ydc
		}
	}

	var insightProvider providers.InsightProvider
	var embeddingProvider providers.EmbeddingProvider
	if cfg.HuggingFace.APIKey == "" {
		log.Println("Warning: HF_API_KEY is not set; AI insight and twin search disabled")
	} else {
		insightClient, err := medgemma.NewClient(&cfg.HuggingFace)
		if err != nil {
			log.Printf("Warning: Failed to initialize insight model client: %v", err)
		} else {
			insightProvider = insightClient
		}
		embeddingClient, err := medsiglip.NewClient(&cfg.HuggingFace)
		if err != nil {
			log.Printf("Warning: Failed to initialize embedding model client: %v", err)
		} else {
			embeddingProvider = embeddingClient
		}
	}

	extractionProvider := extraction.NewExtractionProvider(extraction.ProviderConfig{
		Provider: cfg.Extraction.Provider,
		Insight:  insightProvider,
	})

	sessionRepo := session.NewMemoryStore()

	// Initialize services

	intakeService := services.NewIntakeService(extractionProvider)

	// Set event bus for real-time updates
	if eventBus != nil {
		intakeService.SetEventBus(eventBus)
		log.Println("Event bus configured for intake service")
	}

	twinSearchService := services.NewTwinSearchService(embeddingProvider, caseSearchRepo)
	hospitalRoutingService := services.NewHospitalRoutingService(webSearchProvider, geolocationProvider)
	pageReader := websearch.NewJinaReader("")
	specialistFinderService := services.NewSpecialistFinderService(webSearchProvider, pageReader, insightProvider)
	caseChatService := services.NewCaseChatService(insightProvider)
	insightCompareService := services.NewInsightCompareService(insightProvider)
	profileEnrichmentService := services.NewProfileEnrichmentService(insightProvider)
	selectionExplainService := services.NewSelectionExplainService(insightProvider)

	// Initialize handlers

	intakeHandler := handlers.NewIntakeHandler(sessionRepo, intakeService)

	twinSearchHandler := handlers.NewTwinSearchHandler(twinSearchService)

	hospitalHandler := handlers.NewHospitalHandler(hospitalRoutingService)
	specialistHandler := handlers.NewSpecialistHandler(specialistFinderService)

	caseChatHandler := handlers.NewCaseChatHandler(caseChatService)
	insightCompareHandler := handlers.NewInsightCompareHandler(insightCompareService)

	profileEnrichmentHandler := handlers.NewProfileEnrichmentHandler(profileEnrichmentService)
	selectionExplainHandler := handlers.NewSelectionExplainHandler(selectionExplainService)

	var sseHandler *handlers.SSEHandler
	if eventBus != nil {
		sseHandler = handlers.NewSSEHandler(eventBus)
		log.Println("SSE handler initialized successfully")
	}

	// Set up router

	router := routes.NewRouter(
		intakeHandler,
		twinSearchHandler,
		hospitalHandler,
		specialistHandler,
		caseChatHandler,
		insightCompareHandler,
		profileEnrichmentHandler,
		selectionExplainHandler,
		sseHandler,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // No timeout; the stream endpoints hold connections open
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	log.Println("Server stopped")
}
