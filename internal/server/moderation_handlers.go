package server

import (
	"classwall/internal/middleware"
	"classwall/internal/models"
	"classwall/internal/store"

	"github.com/gofiber/fiber/v2"
)

// BanUser handles POST /api/moderation/users/:id/ban
func (s *Server) BanUser(c *fiber.Ctx) error {
	var req struct {
		Reason       string `json:"reason"`
		DurationDays int    `json:"durationDays"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.store.BanUser(c.Context(), c.Params("id"), middleware.CurrentUserID(c), req.Reason, req.DurationDays)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user.Redacted()})
}

// UnbanUser handles POST /api/moderation/users/:id/unban
func (s *Server) UnbanUser(c *fiber.Ctx) error {
	user, err := s.store.UnbanUser(c.Context(), c.Params("id"), middleware.CurrentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user.Redacted()})
}

// DeletePostByAdmin handles DELETE /api/moderation/posts/:id
func (s *Server) DeletePostByAdmin(c *fiber.Ctx) error {
	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional; a missing reason is recorded as empty.
	_ = c.BodyParser(&req)

	if err := s.store.DeletePostByAdmin(c.Context(), c.Params("id"), middleware.CurrentUserID(c), req.Reason); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post deleted"})
}

// DeleteCommentByAdmin handles DELETE /api/moderation/comments/:id
func (s *Server) DeleteCommentByAdmin(c *fiber.Ctx) error {
	if err := s.store.DeleteCommentByAdmin(c.Context(), c.Params("id"), middleware.CurrentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Comment deleted"})
}

// GetAllPostsForModeration handles GET /api/moderation/posts. Soft-deleted
// posts are included so moderators can review and restore them.
func (s *Server) GetAllPostsForModeration(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	posts, err := s.store.SearchPosts(c.Context(), store.SearchParams{
		Keyword:        c.Query("keyword"),
		Tag:            c.Query("tag"),
		CurrentUser:    viewer,
		IncludeDeleted: true,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"posts": posts})
}

// AppointAdmin handles POST /api/admin/users/:id/appoint
func (s *Server) AppointAdmin(c *fiber.Ctx) error {
	user, err := s.store.AppointAdmin(c.Context(), c.Params("id"), middleware.CurrentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user.Redacted()})
}

// RemoveAdmin handles POST /api/admin/users/:id/dismiss
func (s *Server) RemoveAdmin(c *fiber.Ctx) error {
	user, err := s.store.RemoveAdmin(c.Context(), c.Params("id"), middleware.CurrentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user.Redacted()})
}

// DeleteUser handles DELETE /api/admin/users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	if err := s.store.DeleteUser(c.Context(), c.Params("id"), middleware.CurrentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "User deleted"})
}

// RestorePost handles POST /api/admin/posts/:id/restore
func (s *Server) RestorePost(c *fiber.Ctx) error {
	if err := s.store.RestorePost(c.Context(), c.Params("id"), middleware.CurrentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post restored"})
}

// PermanentlyDeletePost handles DELETE /api/admin/posts/:id/permanent
func (s *Server) PermanentlyDeletePost(c *fiber.Ctx) error {
	if err := s.store.PermanentlyDeletePost(c.Context(), c.Params("id"), middleware.CurrentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post permanently deleted"})
}
