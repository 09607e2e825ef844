package preflight

import (
	"fmt"
	"net/url"
	"os"

	"anivise/internal/config"
	"anivise/internal/jobs"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Check statuses
const (
	StatusPass    = "pass"
	StatusFail    = "fail"
	StatusWarning = "warning"
)

// CheckResult represents the result of a preflight check
type CheckResult struct {
	Name    string
	Status  string
	Message string
	Error   error
}

// Checker validates configuration before the server starts
type Checker struct {
	cfg *config.Config
}

// NewChecker creates a new preflight checker
func NewChecker(cfg *config.Config) *Checker {
	return &Checker{cfg: cfg}
}

// RunAll runs all preflight checks and logs a summary
func (c *Checker) RunAll() []CheckResult {
	log.Println("🔍 Running pre-flight checks...")

	results := []CheckResult{
		c.checkGeminiKey(),
		c.checkJikanURL(),
		c.checkCacheBackend(),
		c.checkGenreAliases(),
		c.checkProbeSchedule(),
	}

	passed, failed, warnings := 0, 0, 0
	for _, result := range results {
		switch result.Status {
		case StatusPass:
			log.Printf("   ✅ %s: %s", result.Name, result.Message)
			passed++
		case StatusFail:
			log.Printf("   ❌ %s: %s", result.Name, result.Message)
			if result.Error != nil {
				log.Printf("      Error: %v", result.Error)
			}
			failed++
		case StatusWarning:
			log.Printf("   ⚠️  %s: %s", result.Name, result.Message)
			warnings++
		}
	}

	log.Printf("📊 Pre-flight summary: %d passed, %d failed, %d warnings", passed, failed, warnings)
	return results
}

// HasFailures returns true if any check failed
func HasFailures(results []CheckResult) bool {
	for _, result := range results {
		if result.Status == StatusFail {
			return true
		}
	}
	return false
}

// A missing key only disables the model-backed endpoints, so it is a warning
func (c *Checker) checkGeminiKey() CheckResult {
	if c.cfg.GeminiAPIKey == "" {
		return CheckResult{
			Name:    "Gemini API Key",
			Status:  StatusWarning,
			Message: "GEMINI_API_KEY not set; /api/intent, /api/ask, /api/models and /api/recommend will fail",
		}
	}
	return CheckResult{Name: "Gemini API Key", Status: StatusPass, Message: "Key configured"}
}

func (c *Checker) checkJikanURL() CheckResult {
	u, err := url.Parse(c.cfg.JikanBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return CheckResult{
			Name:    "Jikan Base URL",
			Status:  StatusFail,
			Message: fmt.Sprintf("JIKAN_BASE_URL %q is not an absolute http(s) URL", c.cfg.JikanBaseURL),
			Error:   err,
		}
	}
	return CheckResult{Name: "Jikan Base URL", Status: StatusPass, Message: c.cfg.JikanBaseURL}
}

// Redis problems degrade to the in-memory cache at startup, so they only warn
func (c *Checker) checkCacheBackend() CheckResult {
	switch c.cfg.CacheBackend {
	case "memory":
		return CheckResult{Name: "Cache Backend", Status: StatusPass, Message: "in-memory"}
	case "redis":
		if c.cfg.RedisURL == "" {
			return CheckResult{
				Name:    "Cache Backend",
				Status:  StatusWarning,
				Message: "CACHE_BACKEND=redis without REDIS_URL; falling back to in-memory",
			}
		}
		if _, err := redis.ParseURL(c.cfg.RedisURL); err != nil {
			return CheckResult{
				Name:    "Cache Backend",
				Status:  StatusWarning,
				Message: "REDIS_URL cannot be parsed; falling back to in-memory",
				Error:   err,
			}
		}
		return CheckResult{Name: "Cache Backend", Status: StatusPass, Message: "redis"}
	default:
		return CheckResult{
			Name:    "Cache Backend",
			Status:  StatusWarning,
			Message: fmt.Sprintf("unknown CACHE_BACKEND %q; using in-memory", c.cfg.CacheBackend),
		}
	}
}

func (c *Checker) checkGenreAliases() CheckResult {
	if c.cfg.GenreAliasesFile == "" {
		return CheckResult{Name: "Genre Aliases", Status: StatusPass, Message: "embedded table"}
	}
	if _, err := os.Stat(c.cfg.GenreAliasesFile); err != nil {
		return CheckResult{
			Name:    "Genre Aliases",
			Status:  StatusWarning,
			Message: fmt.Sprintf("%s not readable; using embedded table", c.cfg.GenreAliasesFile),
			Error:   err,
		}
	}
	return CheckResult{Name: "Genre Aliases", Status: StatusPass, Message: c.cfg.GenreAliasesFile}
}

func (c *Checker) checkProbeSchedule() CheckResult {
	if c.cfg.HealthProbeSchedule == "" {
		return CheckResult{Name: "Probe Schedule", Status: StatusPass, Message: "upstream probe disabled"}
	}
	if err := jobs.ValidateSchedule(c.cfg.HealthProbeSchedule); err != nil {
		return CheckResult{
			Name:    "Probe Schedule",
			Status:  StatusFail,
			Message: "HEALTH_PROBE_SCHEDULE is not a valid cron expression",
			Error:   err,
		}
	}
	return CheckResult{Name: "Probe Schedule", Status: StatusPass, Message: c.cfg.HealthProbeSchedule}
}
