package server

import (
	"classwall/internal/middleware"
	"classwall/internal/models"
	"classwall/internal/store"
	"classwall/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetTags handles GET /api/tags
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.store.GetTags(c.Context())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"tags": tags})
}

// AddTag handles POST /api/admin/tags
func (s *Server) AddTag(c *fiber.Ctx) error {
	var req struct {
		Tag string `json:"tag"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateTag(req.Tag); err != nil {
		return models.RespondWithError(c, models.NewValidationError(err.Error()))
	}

	if err := s.store.AddTag(c.Context(), middleware.CurrentUserID(c), req.Tag); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Tag added"})
}

// RemoveTag handles DELETE /api/admin/tags/:tag
func (s *Server) RemoveTag(c *fiber.Ctx) error {
	tag, err := decodeParam(c, "tag")
	if err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid tag parameter"))
	}

	if err := s.store.RemoveTag(c.Context(), middleware.CurrentUserID(c), tag); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Tag removed"})
}

// GetSettings handles GET /api/settings
func (s *Server) GetSettings(c *fiber.Ctx) error {
	settings, err := s.store.GetSettings(c.Context())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"settings": settings})
}

// UpdateSettings handles PUT /api/admin/settings
func (s *Server) UpdateSettings(c *fiber.Ctx) error {
	var req models.SettingsUpdate
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	settings, err := s.store.UpdateSettings(c.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"settings": settings})
}

// GetActiveAnnouncements handles GET /api/announcements
func (s *Server) GetActiveAnnouncements(c *fiber.Ctx) error {
	announcements, err := s.store.GetActiveAnnouncements(c.Context())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"announcements": announcements})
}

// GetAnnouncements handles GET /api/admin/announcements, including inactive
// entries.
func (s *Server) GetAnnouncements(c *fiber.Ctx) error {
	announcements, err := s.store.GetAnnouncements(c.Context())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"announcements": announcements})
}

// CreateAnnouncement handles POST /api/admin/announcements
func (s *Server) CreateAnnouncement(c *fiber.Ctx) error {
	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		IsActive bool   `json:"isActive"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	announcement, err := s.store.CreateAnnouncement(c.Context(), store.CreateAnnouncementInput{
		Title:    req.Title,
		Content:  req.Content,
		ActorID:  middleware.CurrentUserID(c),
		IsActive: req.IsActive,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"announcement": announcement})
}

// UpdateAnnouncement handles PUT /api/admin/announcements/:id
func (s *Server) UpdateAnnouncement(c *fiber.Ctx) error {
	var req store.AnnouncementUpdate
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	announcement, err := s.store.UpdateAnnouncement(c.Context(), c.Params("id"), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"announcement": announcement})
}

// DeleteAnnouncement handles DELETE /api/admin/announcements/:id
func (s *Server) DeleteAnnouncement(c *fiber.Ctx) error {
	if err := s.store.DeleteAnnouncement(c.Context(), c.Params("id")); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Announcement deleted"})
}
