package handlers

import (
	"encoding/json"
	"errors"

	"anivise/internal/llm"
	"anivise/internal/middleware"
	"anivise/internal/models"
	"anivise/internal/presentation"
	"anivise/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AskHandler runs the whole chain: classify, dispatch, present
type AskHandler struct {
	intents *services.IntentService
	router  *services.RouterService
}

// NewAskHandler creates a new ask handler
func NewAskHandler(intents *services.IntentService, router *services.RouterService) *AskHandler {
	return &AskHandler{intents: intents, router: router}
}

// AskResponse is the JSON body of POST /api/ask
type AskResponse struct {
	Intent   models.Intent       `json:"intent"`
	Params   models.Params       `json:"params"`
	View     presentation.View   `json:"view"`
	Data     []json.RawMessage   `json:"data"`
	Cards    []presentation.Card `json:"cards"`
	Fallback string              `json:"fallback,omitempty"`
}

// Ask handles POST /api/ask. With ?format=html the rendered fragment is
// returned instead of JSON.
func (h *AskHandler) Ask(c *fiber.Ctx) error {
	logger := middleware.Logger(c)
	wantHTML := c.Query("format") == "html"

	prompt, _ := promptFromBody(c)
	classification, err := h.intents.Classify(c.UserContext(), prompt)
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return missingKeyResponse(c)
		}
		logger.WithError(err).Error("[ASK] Classification failed")
		return h.failed(c, wantHTML)
	}

	result, err := h.router.Route(c.UserContext(), string(classification.Intent), classification.Params)
	if err != nil {
		logger.WithError(err).WithField("intent", classification.Intent).Error("[ASK] Dispatch failed")
		return h.failed(c, wantHTML)
	}

	rendered, err := presentation.Render(result.Intent, result.Data)
	if err != nil {
		logger.WithError(err).Error("[ASK] Rendering failed")
		return h.failed(c, wantHTML)
	}

	if wantHTML {
		c.Type("html", "utf-8")
		return c.SendString(rendered.HTML)
	}

	return c.JSON(AskResponse{
		Intent:   result.Intent,
		Params:   classification.Params,
		View:     rendered.View,
		Data:     result.Data,
		Cards:    rendered.Cards,
		Fallback: result.Fallback,
	})
}

func (h *AskHandler) failed(c *fiber.Ctx, wantHTML bool) error {
	c.Status(fiber.StatusInternalServerError)
	if wantHTML {
		c.Type("html", "utf-8")
		return c.SendString("<p>Request failed.</p>\n")
	}
	return c.JSON(fiber.Map{"error": "Request failed"})
}
