package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cache backends for fetched page text
const (
	CacheNone         = "none"
	CacheMemory       = "memory"
	CacheCloudStorage = "cloud-storage"
)

// Generation provider names
const (
	ProviderOllama     = "ollama"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// Config holds all configuration for the application
type Config struct {
	// Server settings
	Port    string `json:"port"`
	Host    string `json:"host"`
	LogMode string `json:"log_mode"`

	// Generation settings
	AIProvider      string `json:"ai_provider"`
	UseAIGeneration bool   `json:"use_ai_generation"`
	ProviderTimeout int    `json:"provider_timeout_seconds"`

	// Ollama settings
	OllamaHost  string `json:"ollama_host"`
	OllamaModel string `json:"ollama_model"`

	// OpenRouter settings
	OpenRouterAPIKey  string `json:"-"` // Don't expose in JSON
	OpenRouterModel   string `json:"openrouter_model"`
	OpenRouterBaseURL string `json:"openrouter_base_url"`

	// Gemini API settings
	GeminiAPIKey  string `json:"-"` // Don't expose in JSON
	GeminiModel   string `json:"gemini_model"`
	GeminiBaseURL string `json:"gemini_base_url"`

	// Research settings
	SearchURL            string `json:"search_url"`
	SearchTimeout        int    `json:"search_timeout_seconds"`
	FetchTimeout         int    `json:"fetch_timeout_seconds"`
	ResearchDepth        int    `json:"research_depth"`
	MaxConcurrentFetches int    `json:"max_concurrent_fetches"`

	// Cache settings
	CacheType          string `json:"cache_type"`     // "none", "memory" or "cloud-storage"
	CacheDuration      int    `json:"cache_duration"` // in hours
	CacheBucket        string `json:"cache_bucket"`
	CachePruneSchedule string `json:"cache_prune_schedule"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Host:                 getEnvOrDefault("HOST", "0.0.0.0"),
		LogMode:              getEnvOrDefault("LOG_MODE", "development"),
		AIProvider:           strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderOllama)),
		UseAIGeneration:      getEnvOrDefaultBool("USE_AI_GENERATION", true),
		ProviderTimeout:      getEnvOrDefaultInt("PROVIDER_TIMEOUT_SECONDS", 60),
		OllamaHost:           getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:          getEnvOrDefault("OLLAMA_MODEL", "llama3"),
		OpenRouterAPIKey:     getEnvOrDefault("OPENROUTER_API_KEY", ""),
		OpenRouterModel:      getEnvOrDefault("OPENROUTER_MODEL", "google/gemini-2.0-flash-exp:free"),
		OpenRouterBaseURL:    getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai"),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:        getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
		SearchURL:            getEnvOrDefault("SEARCH_URL", "https://html.duckduckgo.com/html/"),
		SearchTimeout:        getEnvOrDefaultInt("SEARCH_TIMEOUT_SECONDS", 30),
		FetchTimeout:         getEnvOrDefaultInt("FETCH_TIMEOUT_SECONDS", 20),
		ResearchDepth:        getEnvOrDefaultInt("RESEARCH_DEPTH", 3),
		MaxConcurrentFetches: getEnvOrDefaultInt("MAX_CONCURRENT_FETCHES", 4),
		CacheType:            strings.ToLower(getEnvOrDefault("CACHE_TYPE", CacheNone)),
		CacheDuration:        getEnvOrDefaultInt("CACHE_DURATION_HOURS", 24),
		CacheBucket:          getEnvOrDefault("CACHE_BUCKET", "study-planner-cache"),
		CachePruneSchedule:   getEnvOrDefault("CACHE_PRUNE_SCHEDULE", "@every 30m"),
	}

	return config, config.validate()
}

// validate checks if required configuration values are present
func (c *Config) validate() error {
	if c.ProviderTimeout <= 0 {
		return &ConfigError{Field: "PROVIDER_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	if c.SearchTimeout <= 0 {
		return &ConfigError{Field: "SEARCH_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	if c.FetchTimeout <= 0 {
		return &ConfigError{Field: "FETCH_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	switch c.CacheType {
	case CacheNone, CacheMemory, CacheCloudStorage:
	default:
		return &ConfigError{Field: "CACHE_TYPE", Message: "unsupported cache type: " + c.CacheType}
	}
	switch c.AIProvider {
	case ProviderOllama, ProviderOpenRouter, ProviderGemini:
	default:
		return &ConfigError{Field: "AI_PROVIDER", Message: "unknown provider: " + c.AIProvider}
	}
	if !c.UseAIGeneration {
		return nil
	}
	switch c.AIProvider {
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return &ConfigError{Field: "OPENROUTER_API_KEY", Message: "OpenRouter API key is required"}
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return &ConfigError{Field: "GEMINI_API_KEY", Message: "Gemini API key is required"}
		}
	}
	return nil
}

// ProviderTimeoutDuration returns the provider call timeout
func (c *Config) ProviderTimeoutDuration() time.Duration {
	return time.Duration(c.ProviderTimeout) * time.Second
}

// SearchTimeoutDuration returns the web search timeout
func (c *Config) SearchTimeoutDuration() time.Duration {
	return time.Duration(c.SearchTimeout) * time.Second
}

// FetchTimeoutDuration returns the page fetch timeout
func (c *Config) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

// CacheTTL returns how long cached pages stay valid
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheDuration) * time.Hour
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default if not set
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvOrDefaultBool accepts true/1/yes (case-insensitive) as true
func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	switch value {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
