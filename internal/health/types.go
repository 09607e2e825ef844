package health

import "time"

// Upstream names a remote dependency whose health is tracked
type Upstream string

const (
	UpstreamGemini Upstream = "gemini"
	UpstreamJikan  Upstream = "jikan"
	UpstreamRedis  Upstream = "redis"
)

// Status represents the health state of an upstream
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusCooldown  Status = "cooldown"
	StatusUnknown   Status = "unknown"
)

// UpstreamHealth tracks one upstream
type UpstreamHealth struct {
	Upstream      Upstream  `json:"upstream"`
	Status        Status    `json:"status"`
	LastChecked   time.Time `json:"last_checked,omitempty"`
	LastSuccessAt time.Time `json:"last_success_at,omitempty"`
	FailureCount  int       `json:"failure_count"`
	LastError     string    `json:"last_error,omitempty"`
	CooldownUntil time.Time `json:"cooldown_until,omitempty"`
}

// Reporter receives call outcomes from upstream clients
type Reporter interface {
	MarkHealthy(upstream Upstream)
	MarkFailed(upstream Upstream, statusCode int, errMsg string)
}

// NopReporter discards outcomes
type NopReporter struct{}

func (NopReporter) MarkHealthy(Upstream) {}

func (NopReporter) MarkFailed(Upstream, int, string) {}
