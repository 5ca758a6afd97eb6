package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PlugStatic guards the static outputs prefix so only combined PDF files
// are served from the output directory.
func PlugStatic(staticPrefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()

		if strings.HasPrefix(path, staticPrefix) {

			// Temp files and anything non-PDF stay private.
			if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"status": "not found",
				})
			}
		}

		return c.Next()
	}
}
