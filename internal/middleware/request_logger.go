package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger writes one access log entry per request. It runs the rest of
// the chain first so the status reflects the error handler's response and the
// caller set by Identify is known.
func RequestLogger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if username, ok := c.Locals(LocalUsername).(string); ok && username != "" {
			attrs = append(attrs, "username", username)
		}
		log.Info("http request", attrs...)
		return nil
	}
}
