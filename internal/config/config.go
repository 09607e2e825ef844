package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port        string
	Environment string

	// Gemini configuration. The key is only checked when a request needs it.
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// Jikan configuration
	JikanBaseURL string
	JikanRate    float64 // requests per second

	// Response cache
	CacheBackend string // "memory" or "redis"
	CacheTTL     time.Duration
	RedisURL     string

	UpstreamTimeout time.Duration

	AllowedOrigins string

	// Optional YAML file overriding the embedded genre alias table (hot reloaded)
	GenreAliasesFile string

	// Cron expression for the upstream probe job; empty disables it
	HealthProbeSchedule string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "3001"),
		Environment: strings.ToLower(getEnv("ENVIRONMENT", "development")),

		GeminiAPIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", ""),

		JikanBaseURL: strings.TrimRight(getEnv("JIKAN_BASE_URL", "https://api.jikan.moe/v4"), "/"),
		JikanRate:    getFloatEnv("JIKAN_RATE", 3),

		CacheBackend: strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
		CacheTTL:     getDurationEnv("CACHE_TTL", 60*time.Second),
		RedisURL:     getEnv("REDIS_URL", ""),

		UpstreamTimeout: getDurationEnv("UPSTREAM_TIMEOUT", 30*time.Second),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		GenreAliasesFile:    getEnv("GENRE_ALIASES_FILE", ""),
		HealthProbeSchedule: getEnv("HEALTH_PROBE_SCHEDULE", ""),
	}
}

// IsProduction reports whether the service runs with production defaults
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// getDurationEnv accepts Go duration strings ("45s") or bare seconds ("45")
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
		return parsed
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
