package server

import (
	"discusshub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateUser handles POST /users. Registration is idempotent on email: a
// repeat returns a message instead of an error so social-login callbacks can
// fire it on every sign-in.
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}
	if user.Email == "" {
		return fail(c, models.NewValidationError("email is required"))
	}
	user.ID = 0
	user.Role = ""

	created, err := s.users.RegisterUser(c.UserContext(), &user)
	if err != nil {
		return fail(c, err)
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "user already exists"})
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// GetUsers handles GET /users. Admin only.
func (s *Server) GetUsers(c *fiber.Ctx) error {
	users, err := s.users.ListUsers(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(users)
}

// CheckAdmin handles GET /users/admin/:email. A caller may only query their
// own email; anything else is forbidden regardless of role.
func (s *Server) CheckAdmin(c *fiber.Ctx) error {
	email := c.Params("email")
	callerEmail, _ := c.Locals("userEmail").(string)
	if callerEmail != email {
		return fail(c, models.NewForbiddenError("Forbidden access"))
	}

	isAdmin, err := s.users.IsAdmin(c.UserContext(), email)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"admin": isAdmin})
}

// PromoteUser handles PATCH /users/admin/:id. Admin only.
func (s *Server) PromoteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "User")
	if err != nil {
		return fail(c, err)
	}

	if err := s.users.PromoteToAdmin(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "User promoted to admin"})
}

// DeleteUser handles DELETE /users/:id. Admin only.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "User")
	if err != nil {
		return fail(c, err)
	}

	if err := s.users.DeleteUser(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "User deleted successfully"})
}
