package health

import (
	"net/http"
	"strings"
	"time"
)

// IsQuotaError detects quota exhaustion or rate limiting from a status code or error text.
// Gemini reports these as RESOURCE_EXHAUSTED; Jikan as 429.
func IsQuotaError(statusCode int, responseBody string) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}

	lowerBody := strings.ToLower(responseBody)
	quotaPatterns := []string{
		"resource_exhausted",
		"quota exceeded",
		"rate limit",
		"too many requests",
		"requests per minute",
		"per day",
	}

	for _, pattern := range quotaPatterns {
		if strings.Contains(lowerBody, pattern) {
			return true
		}
	}

	return false
}

// ParseCooldownDuration picks how long an upstream sits out after a quota error
func ParseCooldownDuration(statusCode int, responseBody string) time.Duration {
	lowerBody := strings.ToLower(responseBody)

	// Daily quotas do not reset soon
	if strings.Contains(lowerBody, "per day") {
		return 1 * time.Hour
	}

	// Jikan throttles per second and per minute
	if statusCode == http.StatusTooManyRequests ||
		strings.Contains(lowerBody, "requests per minute") {
		return 30 * time.Second
	}

	return 5 * time.Minute
}
