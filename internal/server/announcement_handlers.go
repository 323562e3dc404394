package server

import (
	"discusshub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAnnouncements handles GET /announcements.
func (s *Server) GetAnnouncements(c *fiber.Ctx) error {
	announcements, err := s.announcements.ListAnnouncements(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(announcements)
}

// CreateAnnouncement handles POST /announcement.
func (s *Server) CreateAnnouncement(c *fiber.Ctx) error {
	var announcement models.Announcement
	if err := c.BodyParser(&announcement); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}
	announcement.ID = 0

	if err := s.announcements.CreateAnnouncement(c.UserContext(), &announcement); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(announcement)
}
