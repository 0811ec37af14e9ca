package server

import (
	"classwall/internal/middleware"
	"classwall/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/auth/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user.Redacted()})
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	user, err := s.store.GetUserByID(c.Context(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user.Redacted()})
}

// GetAdmins handles GET /api/users/admins
func (s *Server) GetAdmins(c *fiber.Ctx) error {
	admins, err := s.store.GetAdmins(c.Context())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	redacted := make([]models.User, 0, len(admins))
	for _, a := range admins {
		redacted = append(redacted, a.Redacted())
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"admins": redacted})
}

// UpdateMyProfile handles PUT /api/users/me/profile
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req models.Profile
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.store.UpdateUserProfile(c.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user.Redacted()})
}

// UpdateMyAvatar handles PUT /api/users/me/avatar
func (s *Server) UpdateMyAvatar(c *fiber.Ctx) error {
	var req struct {
		Avatar string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}
	if req.Avatar == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Avatar is required"))
	}

	user, err := s.store.UpdateUserAvatar(c.Context(), middleware.CurrentUserID(c), req.Avatar)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user.Redacted()})
}

// GetAllUsers handles GET /api/moderation/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	users, err := s.store.GetUsers(c.Context())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	redacted := make([]models.User, 0, len(users))
	for _, u := range users {
		redacted = append(redacted, u.Redacted())
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"users": redacted})
}
