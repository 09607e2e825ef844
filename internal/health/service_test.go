package health

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr struct{ code int }

func (e *statusErr) Error() string { return fmt.Sprintf("status %d", e.code) }
func (e *statusErr) HTTPStatus() int { return e.code }

func newTestService(now *time.Time) *Service {
	s := NewService(0)
	s.now = func() time.Time { return *now }
	return s
}

func TestService_UnknownUpstreamIsHealthy(t *testing.T) {
	s := NewService(3)
	assert.True(t, s.IsHealthy(UpstreamJikan))

	s.Register(UpstreamJikan)
	h, ok := s.Get(UpstreamJikan)
	require.True(t, ok)
	assert.Equal(t, StatusUnknown, h.Status)
}

func TestService_FailuresReachThreshold(t *testing.T) {
	now := time.Now()
	s := newTestService(&now)

	s.MarkFailed(UpstreamJikan, 500, "boom")
	s.MarkFailed(UpstreamJikan, 500, "boom")
	assert.True(t, s.IsHealthy(UpstreamJikan))

	s.MarkFailed(UpstreamJikan, 500, "boom")
	assert.False(t, s.IsHealthy(UpstreamJikan))
	assert.Equal(t, "degraded", s.Overall())

	s.MarkHealthy(UpstreamJikan)
	assert.True(t, s.IsHealthy(UpstreamJikan))
	h, _ := s.Get(UpstreamJikan)
	assert.Equal(t, 0, h.FailureCount)
	assert.Equal(t, "healthy", s.Overall())
}

func TestService_QuotaErrorStartsCooldown(t *testing.T) {
	now := time.Now()
	s := newTestService(&now)

	s.MarkFailed(UpstreamJikan, 429, "Too Many Requests")
	assert.False(t, s.IsHealthy(UpstreamJikan))
	h, _ := s.Get(UpstreamJikan)
	assert.Equal(t, StatusCooldown, h.Status)
	assert.Equal(t, now.Add(30*time.Second), h.CooldownUntil)

	now = now.Add(31 * time.Second)
	assert.True(t, s.IsHealthy(UpstreamJikan))
	assert.Equal(t, StatusUnknown, s.Snapshot()[0].Status)
}

func TestService_GeminiResourceExhausted(t *testing.T) {
	now := time.Now()
	s := newTestService(&now)

	s.MarkFailed(UpstreamGemini, 0, "Error 429, Status: RESOURCE_EXHAUSTED, quota exceeded per day")
	h, _ := s.Get(UpstreamGemini)
	assert.Equal(t, StatusCooldown, h.Status)
	assert.Equal(t, now.Add(time.Hour), h.CooldownUntil)
}

func TestService_SnapshotSorted(t *testing.T) {
	s := NewService(3)
	s.Register(UpstreamRedis)
	s.Register(UpstreamGemini)
	s.Register(UpstreamJikan)

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, UpstreamGemini, snap[0].Upstream)
	assert.Equal(t, UpstreamJikan, snap[1].Upstream)
	assert.Equal(t, UpstreamRedis, snap[2].Upstream)
}

func TestService_RunProbes(t *testing.T) {
	s := NewService(1)
	s.RunProbes(context.Background(), []Probe{
		{Upstream: UpstreamGemini, Check: func(context.Context) error { return nil }},
		{Upstream: UpstreamJikan, Check: func(context.Context) error { return fmt.Errorf("ping: %w", &statusErr{code: 503}) }},
		{Upstream: UpstreamRedis, Check: func(context.Context) error { return errors.New("connection refused") }},
	})

	assert.True(t, s.IsHealthy(UpstreamGemini))
	assert.False(t, s.IsHealthy(UpstreamJikan))
	assert.False(t, s.IsHealthy(UpstreamRedis))
}

func TestStatusCodeOf(t *testing.T) {
	assert.Equal(t, 404, StatusCodeOf(fmt.Errorf("wrap: %w", &statusErr{code: 404})))
	assert.Equal(t, 0, StatusCodeOf(errors.New("plain")))
}

func TestParseCooldownDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, ParseCooldownDuration(429, ""))
	assert.Equal(t, time.Hour, ParseCooldownDuration(0, "limit: requests PER DAY"))
	assert.Equal(t, 5*time.Minute, ParseCooldownDuration(0, "rate limit"))
	assert.False(t, IsQuotaError(500, "internal"))
}
