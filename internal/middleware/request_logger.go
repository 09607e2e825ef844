package middleware

import (
	"anivise/internal/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const loggerKey = "logger"

// RequestLogger stores a request-scoped logger in Locals. It must run after
// the requestid middleware so the id is available.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID, _ := c.Locals("requestid").(string)
		c.Locals(loggerKey, logging.WithRequest(requestID, c.Method()+" "+c.Path()))
		return c.Next()
	}
}

// Logger returns the request-scoped logger, or the standard logger when
// RequestLogger did not run
func Logger(c *fiber.Ctx) *logrus.Entry {
	if entry, ok := c.Locals(loggerKey).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
