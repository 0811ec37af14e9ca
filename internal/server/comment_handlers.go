package server

import (
	"classwall/internal/middleware"
	"classwall/internal/models"
	"classwall/internal/store"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	comments, err := s.store.GetCommentsByPost(c.Context(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"comments": comments})
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		Content  string `json:"content"`
		ParentID string `json:"parentId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.store.CreateComment(c.Context(), store.CreateCommentInput{
		PostID:   c.Params("id"),
		AuthorID: middleware.CurrentUserID(c),
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

// DeleteComment handles DELETE /api/comments/:id (author's own comments only)
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	if err := s.store.DeleteCommentByUser(c.Context(), c.Params("id"), middleware.CurrentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Comment deleted"})
}
