package middleware

import (
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	log "github.com/sirupsen/logrus"
)

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	// Global limits (per IP)
	GlobalAPIMax        int           // Max requests per window for all API endpoints
	GlobalAPIExpiration time.Duration // Expiration window

	// Endpoints that call the language model (per IP); each request spends model quota
	LLMMax        int
	LLMExpiration time.Duration
}

// DefaultRateLimitConfig returns production-safe defaults
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		// Global: 120/min = 2 req/sec
		GlobalAPIMax:        120,
		GlobalAPIExpiration: 1 * time.Minute,

		// Model-backed endpoints: 20/min
		LLMMax:        20,
		LLMExpiration: 1 * time.Minute,
	}
}

// LoadRateLimitConfig loads config from environment variables with defaults
func LoadRateLimitConfig() *RateLimitConfig {
	config := DefaultRateLimitConfig()

	if v := os.Getenv("RATE_LIMIT_GLOBAL_API"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.GlobalAPIMax = n
		}
	}

	if v := os.Getenv("RATE_LIMIT_LLM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.LLMMax = n
		}
	}

	// Development mode: more lenient limits
	if os.Getenv("ENVIRONMENT") == "development" {
		config.GlobalAPIMax = 1000
		config.LLMMax = 200
		log.Println("⚠️  [RATE-LIMIT] Development mode: using relaxed rate limits")
	}

	return config
}

// GlobalAPIRateLimiter creates a rate limiter for all API requests
func GlobalAPIRateLimiter(config *RateLimitConfig) fiber.Handler {
	return ipLimiter("global", config.GlobalAPIMax, config.GlobalAPIExpiration, "Too many requests. Please slow down.")
}

// LLMRateLimiter guards endpoints that spend language model quota
func LLMRateLimiter(config *RateLimitConfig) fiber.Handler {
	return ipLimiter("llm", config.LLMMax, config.LLMExpiration, "Too many requests to this endpoint.")
}

// ipLimiter buckets requests per client IP under scope
func ipLimiter(scope string, limit int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return scope + ":" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.WithFields(log.Fields{"scope": scope, "ip": c.IP(), "path": c.Path()}).
				Warn("🚫 [RATE-LIMIT] Limit reached")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       message,
				"retry_after": int(window.Seconds()),
			})
		},
	})
}
