package handlers

import (
	"errors"

	"anivise/internal/llm"
	"anivise/internal/middleware"
	"anivise/internal/models"
	"anivise/internal/services"

	"github.com/gofiber/fiber/v2"
)

// IntentHandler serves the classifier
type IntentHandler struct {
	intents *services.IntentService
}

// NewIntentHandler creates a new intent handler
func NewIntentHandler(intents *services.IntentService) *IntentHandler {
	return &IntentHandler{intents: intents}
}

// Classify handles POST /api/intent
func (h *IntentHandler) Classify(c *fiber.Ctx) error {
	prompt, ok := promptFromBody(c)
	if !ok {
		return c.JSON(models.Classification{
			Intent: models.IntentUnknown,
			Params: models.Params{TopN: models.DefaultTopN},
		})
	}

	result, err := h.intents.Classify(c.UserContext(), prompt)
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return missingKeyResponse(c)
		}
		middleware.Logger(c).WithError(err).Error("[INTENT] Classification failed")
		return c.Status(fiber.StatusInternalServerError).JSON(models.Classification{
			Intent: models.IntentUnknown,
			Params: models.Params{TopN: models.DefaultTopN},
		})
	}

	return c.JSON(result)
}
