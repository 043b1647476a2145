package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Redis       RedisConfig
	Typesense   TypesenseConfig
	Geolocation GeolocationConfig
	WebSearch   WebSearchConfig
	HuggingFace HuggingFaceConfig
	Extraction  ExtractionConfig
	OTEL        OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// GeolocationConfig holds geolocation provider configuration
type GeolocationConfig struct {
	Provider     string
	NominatimURL string
	OSRMURL      string
	UserAgent    string
}

// WebSearchConfig holds the hospital web search configuration
type WebSearchConfig struct {
	APIKey string
	URL    string
}

// HuggingFaceConfig holds the inference endpoint configuration for the
// insight and embedding models
type HuggingFaceConfig struct {
	APIKey            string
	InsightEndpoint   string
	InsightModel      string
	EmbeddingEndpoint string
	EmbeddingModel    string
	RateLimitRPM      int
	RateLimitBurst    int
}

// ExtractionConfig selects the case profile extraction provider
type ExtractionConfig struct {
	Provider string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:        getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey:     getEnv("TYPESENSE_API_KEY", "xyz"),
			Collection: getEnv("TYPESENSE_COLLECTION", "cases"),
		},
		Geolocation: GeolocationConfig{
			Provider:     getEnv("GEOLOCATION_PROVIDER", "mock"),
			NominatimURL: getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
			OSRMURL:      getEnv("OSRM_URL", "https://router.project-osrm.org"),
			UserAgent:    getEnv("GEOLOCATION_USER_AGENT", "case-twin/1.0"),
		},
		WebSearch: WebSearchConfig{
			APIKey: getEnv("YDC_API_KEY", ""),
			URL:    getEnv("YDC_SEARCH_URL", "https://api.ydc-index.io/search"),
		},
		HuggingFace: HuggingFaceConfig{
			APIKey:            getEnv("HF_API_KEY", ""),
			InsightEndpoint:   getEnv("HF_INSIGHT_ENDPOINT", ""),
			InsightModel:      getEnv("HF_INSIGHT_MODEL", "medgemma-4b-it"),
			EmbeddingEndpoint: getEnv("HF_EMBEDDING_ENDPOINT", ""),
			EmbeddingModel:    getEnv("HF_EMBEDDING_MODEL", "medsiglip-448"),
			RateLimitRPM:      getEnvAsInt("HF_RATE_LIMIT_RPM", 60),
			RateLimitBurst:    getEnvAsInt("HF_RATE_LIMIT_BURST", 5),
		},
		Extraction: ExtractionConfig{
			Provider: getEnv("EXTRACTION_PROVIDER", "heuristic"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "case-twin"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
