package middleware

import (
	"errors"
	"log/slog"

	"stockman/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders errors returned by handlers as JSON. App errors use
// their kind's status; fiber errors keep theirs; anything else is a 500.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			status := appErr.StatusCode()
			if status >= fiber.StatusInternalServerError {
				log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
			} else {
				log.Debug("request rejected", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
			}

			body := fiber.Map{"message": appErr.Message}
			if len(appErr.Fields) > 0 {
				body["errors"] = appErr.Fields
			}
			return c.Status(status).JSON(body)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}

		log.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}
}
