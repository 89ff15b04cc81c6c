package middleware

import (
	"strings"

	"license-validation-api/internal/model"
	"license-validation-api/internal/util"

	"github.com/gofiber/fiber/v2"
)

// Auth guards the admin routes with a bearer token issued by the auth
// endpoint.
func Auth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).
				JSON(model.ErrorResponse("Missing authorization token", "UNAUTHORIZED"))
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).
				JSON(model.ErrorResponse("Invalid authorization format", "UNAUTHORIZED"))
		}

		subject, err := util.ValidateToken(tokenParts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).
				JSON(model.ErrorResponse("Invalid authorization token", "UNAUTHORIZED"))
		}

		c.Locals("subject", subject)
		return c.Next()
	}
}
