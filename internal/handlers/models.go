package handlers

import (
	"errors"
	"time"

	"anivise/internal/llm"
	"anivise/internal/logging"
	"anivise/internal/middleware"
	"anivise/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ModelsHandler lists the generative models available to the configured key
type ModelsHandler struct {
	lister llm.ModelLister
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(lister llm.ModelLister) *ModelsHandler {
	return &ModelsHandler{lister: lister}
}

// List handles GET /api/models
func (h *ModelsHandler) List(c *fiber.Ctx) error {
	list, err := h.lister.ListModels(c.UserContext())
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return missingKeyResponse(c)
		}
		logging.WithUpstream(middleware.Logger(c), "gemini").WithError(err).Error("[MODELS] Failed to list models")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch models",
		})
	}

	generateOnly := c.Query("generate_only", "false") == "true"
	filtered := make([]models.Model, 0, len(list))
	for _, m := range list {
		if generateOnly && !m.SupportsGeneration() {
			continue
		}
		filtered = append(filtered, m)
	}

	return c.JSON(models.ModelsResponse{
		Models:    filtered,
		Count:     len(filtered),
		FetchedAt: time.Now().UTC(),
	})
}
