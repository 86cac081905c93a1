package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	LLM       LLMConfig
	Directory DirectoryConfig
	Ticketing TicketingConfig
	Pipeline  PipelineConfig
	Redis     RedisConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// AuthConfig holds service-to-service auth configuration
type AuthConfig struct {
	ServiceSecret string
	TokenExpiry   time.Duration
}

// LLMConfig holds extraction backend configuration
type LLMConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	RequestTimeout  time.Duration
}

// DirectoryConfig holds directory service configuration
type DirectoryConfig struct {
	BaseURL       string
	AccessToken   string
	EnableSearch  bool // fuzzy $search lookups, needs directory-side support
	CacheTTL      time.Duration
	CacheBackend  string // "memory" or "redis"
	MaxCandidates int
}

// TicketingConfig holds work item backend configuration
type TicketingConfig struct {
	BaseURL       string
	Project       string
	PersonalToken string
	AreaPath      string
	IterationPath string
	ProvenanceTag string
}

// PipelineConfig holds pipeline tuning knobs
type PipelineConfig struct {
	ChunkThreshold   int
	DeliveryBatch    int
	DeliveryDelay    time.Duration
	ResolveBatch     int
	RetryAttempts    int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration
	RetryJitter      float64
	SprintEndWeekday time.Weekday
}

// RedisConfig holds Redis configuration (used only when the resolution
// cache backend is "redis")
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Auth: AuthConfig{
			ServiceSecret: getEnv("SERVICE_AUTH_SECRET", ""),
			TokenExpiry:   getEnvAsDuration("SERVICE_TOKEN_EXPIRY", "1h"),
		},
		LLM: LLMConfig{
			APIKey:          getEnv("LLM_API_KEY", ""),
			BaseURL:         getEnv("LLM_API_URL", "https://api.groq.com"),
			Model:           getEnv("LLM_MODEL", "llama-3.1-70b-versatile"),
			Temperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.2),
			MaxOutputTokens: getEnvAsInt("LLM_MAX_OUTPUT_TOKENS", 4096),
			RequestTimeout:  getEnvAsDuration("LLM_REQUEST_TIMEOUT", "60s"),
		},
		Directory: DirectoryConfig{
			BaseURL:       getEnv("DIRECTORY_API_URL", "https://graph.microsoft.com"),
			AccessToken:   getEnv("DIRECTORY_ACCESS_TOKEN", ""),
			EnableSearch:  getEnvAsBool("DIRECTORY_ENABLE_SEARCH", true),
			CacheTTL:      getEnvAsDuration("DIRECTORY_CACHE_TTL", "5m"),
			CacheBackend:  getEnv("DIRECTORY_CACHE_BACKEND", "memory"),
			MaxCandidates: getEnvAsInt("DIRECTORY_MAX_CANDIDATES", 5),
		},
		Ticketing: TicketingConfig{
			BaseURL:       getEnv("TICKETING_API_URL", ""),
			Project:       getEnv("TICKETING_PROJECT", ""),
			PersonalToken: getEnv("TICKETING_PAT", ""),
			AreaPath:      getEnv("TICKETING_AREA_PATH", ""),
			IterationPath: getEnv("TICKETING_ITERATION_PATH", ""),
			ProvenanceTag: getEnv("TICKETING_PROVENANCE_TAG", "meeting-actions"),
		},
		Pipeline: PipelineConfig{
			ChunkThreshold:   getEnvAsInt("PIPELINE_CHUNK_THRESHOLD", 100000),
			DeliveryBatch:    getEnvAsInt("PIPELINE_DELIVERY_BATCH", 5),
			DeliveryDelay:    getEnvAsDuration("PIPELINE_DELIVERY_DELAY", "500ms"),
			ResolveBatch:     getEnvAsInt("PIPELINE_RESOLVE_BATCH", 5),
			RetryAttempts:    getEnvAsInt("PIPELINE_RETRY_ATTEMPTS", 3),
			RetryBaseDelay:   getEnvAsDuration("PIPELINE_RETRY_BASE_DELAY", "1s"),
			RetryMaxDelay:    getEnvAsDuration("PIPELINE_RETRY_MAX_DELAY", "30s"),
			RetryJitter:      getEnvAsFloat("PIPELINE_RETRY_JITTER", 0.3),
			SprintEndWeekday: getEnvAsWeekday("SPRINT_END_WEEKDAY", time.Friday),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.Ticketing.BaseURL == "" {
		return fmt.Errorf("TICKETING_API_URL is required")
	}
	if c.Ticketing.Project == "" {
		return fmt.Errorf("TICKETING_PROJECT is required")
	}
	if c.Auth.ServiceSecret == "" {
		return fmt.Errorf("SERVICE_AUTH_SECRET is required")
	}
	if c.Pipeline.ChunkThreshold < 1000 {
		return fmt.Errorf("PIPELINE_CHUNK_THRESHOLD must be at least 1000")
	}
	return nil
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func getEnvAsWeekday(key string, defaultValue time.Weekday) time.Weekday {
	valueStr := getEnv(key, "")
	weekdays := map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday,
		"friday": time.Friday, "saturday": time.Saturday,
	}
	if wd, ok := weekdays[strings.ToLower(valueStr)]; ok {
		return wd
	}
	return defaultValue
}
