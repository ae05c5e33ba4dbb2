package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Identity resolves the caller's user ID from the X-User-ID header and
// stores it in the request locals for downstream handlers. Requests
// without an identity are rejected before reaching any handler.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("X-User-ID"))
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing X-User-ID header",
			})
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}
