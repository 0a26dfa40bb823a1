package middleware

import (
	"strings"

	"stockman/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by Identify.
const (
	LocalUserID   = "userID"
	LocalUsername = "username"
	LocalRole     = "role"
)

// Identify stores the claims of a valid "Bearer <token>" header in the Fiber
// context so access logs can name the caller. Requests without a token, or with
// an invalid one, pass through untouched: no route requires authentication.
func Identify(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Next()
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			return c.Next()
		}

		c.Locals(LocalUserID, claims["userID"])
		c.Locals(LocalUsername, claims["username"])
		c.Locals(LocalRole, claims["role"])
		return c.Next()
	}
}
