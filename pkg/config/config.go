package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Search    SearchConfig
	OpenAI    OpenAIConfig
	Typesense TypesenseConfig
	Redis     RedisConfig
	Valuation ValuationConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host        string
	Port        int
	Environment string
}

// SearchConfig selects and bounds the comparable-sales search provider
type SearchConfig struct {
	Provider   string // openai, typesense or mock
	Timeout    time.Duration
	MaxResults int
}

// OpenAIConfig holds OpenAI vector store configuration
type OpenAIConfig struct {
	APIKey        string
	VectorStoreID string
	BaseURL       string
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// RedisConfig holds Redis configuration for the fragment cache
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	CacheTTL time.Duration
}

// ValuationConfig holds the tunable constants of the valuation pipeline
type ValuationConfig struct {
	InitialWindowDays  int
	ExpandedWindowDays int
	MinComparables     int
	AgeRatePerYear     float64
	UsageRatePer1kHrs  float64
	HighSpreadCutoff   float64
	LowSpreadCutoff    float64
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Search: SearchConfig{
			Provider:   getEnv("SEARCH_PROVIDER", "openai"),
			Timeout:    getEnvAsDuration("SEARCH_TIMEOUT", 20*time.Second),
			MaxResults: getEnvAsInt("SEARCH_MAX_RESULTS", 10),
		},
		OpenAI: OpenAIConfig{
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			VectorStoreID: getEnv("OPENAI_VECTOR_STORE_ID", ""),
			BaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("REDIS_CACHE_TTL", 5*time.Minute),
		},
		Valuation: ValuationConfig{
			InitialWindowDays:  getEnvAsInt("VALUATION_INITIAL_WINDOW_DAYS", 90),
			ExpandedWindowDays: getEnvAsInt("VALUATION_EXPANDED_WINDOW_DAYS", 180),
			MinComparables:     getEnvAsInt("VALUATION_MIN_COMPARABLES", 3),
			AgeRatePerYear:     getEnvAsFloat("VALUATION_AGE_RATE_PER_YEAR", 0.015),
			UsageRatePer1kHrs:  getEnvAsFloat("VALUATION_USAGE_RATE_PER_1K_HOURS", 0.02),
			HighSpreadCutoff:   getEnvAsFloat("VALUATION_HIGH_SPREAD_CUTOFF", 0.12),
			LowSpreadCutoff:    getEnvAsFloat("VALUATION_LOW_SPREAD_CUTOFF", 0.30),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "equipment-valuation"),
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
