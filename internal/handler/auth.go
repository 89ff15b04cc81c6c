package handler

import (
	"license-validation-api/internal/model"
	"license-validation-api/internal/util"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var adminPasswordHash string

// InitAuth configures the operator credential. hash is a bcrypt hash of the
// admin password; when empty the token endpoint is effectively disabled.
func InitAuth(hash string) {
	adminPasswordHash = hash
}

type tokenInput struct {
	Password string `json:"password" validate:"required"`
}

// HandleIssueToken exchanges the operator password for a bearer token used
// on the admin routes.
func HandleIssueToken(c *fiber.Ctx) error {
	input := new(tokenInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(model.ErrorResponse("Invalid request body", "INVALID_REQUEST"))
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(model.ErrorResponse("Password is required", "INVALID_REQUEST"))
	}

	if adminPasswordHash == "" {
		return c.Status(fiber.StatusForbidden).
			JSON(model.ErrorResponse("Admin access is not configured", "FORBIDDEN"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(adminPasswordHash), []byte(input.Password)); err != nil {
		log.Warn("failed admin login attempt", zap.String("ip", c.IP()))
		return c.Status(fiber.StatusUnauthorized).
			JSON(model.ErrorResponse("Invalid password", "UNAUTHORIZED"))
	}

	token, err := util.GenerateToken("admin")
	if err != nil {
		log.Error("token generation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).
			JSON(model.ErrorResponse("Token generation failed", "INTERNAL_ERROR"))
	}

	return c.JSON(model.SuccessResponse("Token issued", fiber.Map{
		"token": token,
	}))
}
