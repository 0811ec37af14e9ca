package server

import (
	"classwall/internal/middleware"
	"classwall/internal/models"
	"classwall/internal/store"

	"github.com/gofiber/fiber/v2"
)

// viewer resolves the optional caller for visibility filtering. Anonymous
// requests get a nil viewer.
func (s *Server) viewer(c *fiber.Ctx) (*models.User, error) {
	uid := middleware.CurrentUserID(c)
	if uid == "" {
		return nil, nil
	}
	user, err := s.store.GetUserByID(c.Context(), uid)
	if err != nil {
		// A stale token for a deleted account reads as anonymous.
		if models.CodeOf(err) == models.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	viewer, err := s.viewer(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	posts, err := s.store.SearchPosts(c.Context(), store.SearchParams{
		CurrentUser: viewer,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"posts": posts})
}

// SearchPosts handles GET /api/posts/search
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	viewer, err := s.viewer(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	posts, err := s.store.SearchPosts(c.Context(), store.SearchParams{
		Keyword:     c.Query("keyword"),
		Tag:         c.Query("tag"),
		Visibility:  models.Visibility(c.Query("visibility")),
		CurrentUser: viewer,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"posts": posts})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.store.GetPostByID(c.Context(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if post.IsDeleted {
		return models.RespondWithError(c,
			models.NewNotFoundError("post", post.ID))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"post": post})
}

// RecordView handles POST /api/posts/:id/views. The client reports views
// explicitly so reads stay side-effect free.
func (s *Server) RecordView(c *fiber.Ctx) error {
	if err := s.store.IncrementViews(c.Context(), c.Params("id")); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "View recorded"})
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	posts, err := s.store.GetPostsByAuthor(c.Context(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"posts": posts})
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title      string   `json:"title"`
		Content    string   `json:"content"`
		Images     []string `json:"images"`
		Tag        string   `json:"tag"`
		Visibility string   `json:"visibility"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.store.CreatePost(c.Context(), store.CreatePostInput{
		AuthorID:   middleware.CurrentUserID(c),
		Title:      req.Title,
		Content:    req.Content,
		Images:     req.Images,
		Tag:        req.Tag,
		Visibility: models.Visibility(req.Visibility),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

// DeletePost handles DELETE /api/posts/:id (author's own posts only; the
// moderation route covers everyone else's)
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.store.DeletePostByUser(c.Context(), c.Params("id"), middleware.CurrentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post deleted"})
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	if err := s.store.LikePost(c.Context(), c.Params("id"), middleware.CurrentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post liked"})
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	if err := s.store.UnlikePost(c.Context(), c.Params("id"), middleware.CurrentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Like removed"})
}
