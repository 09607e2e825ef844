package health

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultFailureThreshold = 3

// Service tracks health for every upstream the process talks to
type Service struct {
	mu               sync.RWMutex
	entries          map[Upstream]*UpstreamHealth
	failureThreshold int
	now              func() time.Time
}

// NewService creates a health service; non-positive thresholds use the default of 3
func NewService(failureThreshold int) *Service {
	if failureThreshold <= 0 {
		failureThreshold = defaultFailureThreshold
	}
	return &Service{
		entries:          make(map[Upstream]*UpstreamHealth),
		failureThreshold: failureThreshold,
		now:              time.Now,
	}
}

// Register adds an upstream in the unknown state
func (s *Service) Register(upstream Upstream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(upstream)
}

// entry returns the tracked entry, creating it if needed. Caller holds the lock.
func (s *Service) entry(upstream Upstream) *UpstreamHealth {
	h, exists := s.entries[upstream]
	if !exists {
		h = &UpstreamHealth{Upstream: upstream, Status: StatusUnknown}
		s.entries[upstream] = h
		log.Printf("[HEALTH] Registered upstream %s", upstream)
	}
	return h
}

// IsHealthy reports whether calls to upstream should be attempted.
// Unknown upstreams and expired cooldowns count as healthy.
func (s *Service) IsHealthy(upstream Upstream) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, exists := s.entries[upstream]
	if !exists {
		return true
	}

	switch h.Status {
	case StatusUnhealthy:
		return false
	case StatusCooldown:
		return s.now().After(h.CooldownUntil)
	default:
		return true
	}
}

// MarkHealthy records a successful call
func (s *Service) MarkHealthy(upstream Upstream) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.entry(upstream)
	wasUnhealthy := h.Status == StatusUnhealthy || h.Status == StatusCooldown
	now := s.now()
	h.Status = StatusHealthy
	h.FailureCount = 0
	h.LastError = ""
	h.LastSuccessAt = now
	h.LastChecked = now
	h.CooldownUntil = time.Time{}

	if wasUnhealthy {
		log.Printf("[HEALTH] ✅ %s recovered - now healthy", upstream)
	}
}

// MarkFailed records a failed call. Quota errors put the upstream into cooldown;
// anything else counts toward the unhealthy threshold.
func (s *Service) MarkFailed(upstream Upstream, statusCode int, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.entry(upstream)
	now := s.now()
	h.FailureCount++
	h.LastError = truncateStr(errMsg, 200)
	h.LastChecked = now

	if IsQuotaError(statusCode, errMsg) {
		h.Status = StatusCooldown
		h.CooldownUntil = now.Add(ParseCooldownDuration(statusCode, errMsg))
		log.Printf("[HEALTH] ⏸️  %s in COOLDOWN until %s (reason: %s)",
			upstream, h.CooldownUntil.Format(time.RFC3339), truncateStr(errMsg, 100))
		return
	}

	if h.FailureCount >= s.failureThreshold {
		h.Status = StatusUnhealthy
		log.Printf("[HEALTH] ❌ %s marked UNHEALTHY after %d failures: %s",
			upstream, h.FailureCount, h.LastError)
	} else {
		log.Printf("[HEALTH] ⚠️  %s failure %d/%d: %s",
			upstream, h.FailureCount, s.failureThreshold, h.LastError)
	}
}

// Get returns a copy of the entry for upstream
func (s *Service) Get(upstream Upstream) (UpstreamHealth, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, exists := s.entries[upstream]
	if !exists {
		return UpstreamHealth{}, false
	}
	return *h, true
}

// Snapshot returns all entries sorted by name, with expired cooldowns reported as unknown
func (s *Service) Snapshot() []UpstreamHealth {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	result := make([]UpstreamHealth, 0, len(s.entries))
	for _, h := range s.entries {
		c := *h
		if c.Status == StatusCooldown && now.After(c.CooldownUntil) {
			c.Status = StatusUnknown
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Upstream < result[j].Upstream
	})
	return result
}

// Overall is "healthy" unless some upstream is unhealthy, in which case "degraded"
func (s *Service) Overall() string {
	for _, h := range s.Snapshot() {
		if h.Status == StatusUnhealthy {
			return "degraded"
		}
	}
	return "healthy"
}

// Probe is an active check for one upstream
type Probe struct {
	Upstream Upstream
	Check    func(ctx context.Context) error
}

// RunProbes executes each probe sequentially and records the outcome
func (s *Service) RunProbes(ctx context.Context, probes []Probe) {
	for _, p := range probes {
		if err := p.Check(ctx); err != nil {
			s.MarkFailed(p.Upstream, StatusCodeOf(err), err.Error())
			continue
		}
		s.MarkHealthy(p.Upstream)
	}
}

// StatusCodeOf extracts an HTTP status from errors that carry one
func StatusCodeOf(err error) int {
	var sc interface{ HTTPStatus() int }
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return 0
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
