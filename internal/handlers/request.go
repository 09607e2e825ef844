package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"
)

// promptFromBody reads {"prompt": "..."}; ok is false when the body is not
// JSON or prompt is not a string
func promptFromBody(c *fiber.Ctx) (string, bool) {
	body := c.Body()
	if !gjson.ValidBytes(body) {
		return "", false
	}
	prompt := gjson.GetBytes(body, "prompt")
	if prompt.Type != gjson.String {
		return "", false
	}
	return prompt.String(), true
}

func missingKeyResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Missing GEMINI_API_KEY",
	})
}
