package server

import (
	"time"

	"discusshub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenRequest is the payload for which a token is issued. Only the email is
// required; it becomes the identity claim checked by the auth middleware.
type TokenRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// IssueToken handles POST /jwt. It signs a one-hour bearer token for the
// given user payload.
func (s *Server) IssueToken(c *fiber.Ctx) error {
	var req TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" {
		return fail(c, models.NewValidationError("email is required"))
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"email": req.Email,
		"name":  req.Name,
		"iss":   tokenIssuer,
		"aud":   tokenAudience,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
		"jti":   uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return fail(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"token": signed})
}
