package handlers

import (
	"anivise/internal/logging"
	"anivise/internal/middleware"
	"anivise/internal/models"
	"anivise/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"
)

// RouterHandler serves the dispatcher
type RouterHandler struct {
	router *services.RouterService
}

// NewRouterHandler creates a new router handler
func NewRouterHandler(router *services.RouterService) *RouterHandler {
	return &RouterHandler{router: router}
}

// parseRouteRequest reads {intent, params} tolerantly. A missing or non-string
// intent reads as empty, and malformed params read as none.
func parseRouteRequest(body []byte) models.RouteRequest {
	var req models.RouteRequest
	if !gjson.ValidBytes(body) {
		return req
	}
	if intent := gjson.GetBytes(body, "intent"); intent.Type == gjson.String {
		req.Intent = intent.String()
	}
	if params := gjson.GetBytes(body, "params"); params.IsObject() {
		if err := req.Params.UnmarshalJSON([]byte(params.Raw)); err != nil {
			req.Params = models.Params{}
		}
	}
	return req
}

// Route handles POST /api/router
func (h *RouterHandler) Route(c *fiber.Ctx) error {
	req := parseRouteRequest(c.Body())

	result, err := h.router.Route(c.UserContext(), req.Intent, req.Params)
	if err != nil {
		logging.WithUpstream(middleware.Logger(c), "jikan").
			WithError(err).
			WithField("intent", req.Intent).
			Error("[ROUTER] Dispatch failed")
		return c.Status(fiber.StatusInternalServerError).JSON(models.EmptyResult(models.IntentError))
	}

	return c.JSON(result)
}
