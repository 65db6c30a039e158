package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const (
	corsAllowMethods = "GET,HEAD,POST,OPTIONS"
	corsAllowHeaders = "Content-Type,Authorization"
	corsMaxAge       = 86400
)

// CORS applies the cross-origin policy for browser clients. origin is a
// comma separated list or "*".
func CORS(origin string) fiber.Handler {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		origin = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:  origin,
		AllowMethods:  corsAllowMethods,
		AllowHeaders:  corsAllowHeaders,
		ExposeHeaders: RequestIDHeader,
		MaxAge:        corsMaxAge,
	})
}

// NoContent answers preflight and HEAD probes with 204. The CORS middleware
// has already set the headers by the time it runs.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
