package handlers

import (
	"errors"

	"anivise/internal/llm"
	"anivise/internal/logging"
	"anivise/internal/middleware"
	"anivise/internal/models"
	"anivise/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RecommendHandler serves free-form recommendations
type RecommendHandler struct {
	recommender *services.RecommendService
}

// NewRecommendHandler creates a new recommend handler
func NewRecommendHandler(recommender *services.RecommendService) *RecommendHandler {
	return &RecommendHandler{recommender: recommender}
}

// Recommend handles POST /api/recommend
func (h *RecommendHandler) Recommend(c *fiber.Ctx) error {
	prompt, ok := promptFromBody(c)
	if !ok {
		return c.JSON(fiber.Map{"recommendations": []models.Recommendation{}})
	}

	recs, err := h.recommender.Recommend(c.UserContext(), prompt)
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return missingKeyResponse(c)
		}
		logging.WithUpstream(middleware.Logger(c), "gemini").WithError(err).Error("[RECOMMEND] Request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server error",
		})
	}

	return c.JSON(fiber.Map{"recommendations": recs})
}
