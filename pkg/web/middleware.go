package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// OriginCheck rejects API requests that do not carry a same-origin
// Referer header, so only the served frontend (and clients that present
// themselves as it) can reach the backend routes.
func OriginCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		referer := c.Get(fiber.HeaderReferer)
		if referer == "" || !strings.HasPrefix(referer, c.BaseURL()) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Access denied - only frontend requests are allowed",
			})
		}
		return c.Next()
	}
}
