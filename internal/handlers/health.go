package handlers

import (
	"time"

	"anivise/internal/health"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	tracker *health.Service
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(tracker *health.Service) *HealthHandler {
	return &HealthHandler{tracker: tracker}
}

// Handle responds with server health status and the last known upstream state
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    h.tracker.Overall(),
		"upstreams": h.tracker.Snapshot(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
