// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"classwall/internal/config"
	"classwall/internal/middleware"
	"classwall/internal/models"
	"classwall/internal/storage"
	"classwall/internal/store"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	store          *store.Store
	kv             storage.KV
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
}

// NewServer creates a server instance over an already-initialized store.
// The redis client is optional; without it per-route rate limiting degrades
// to fail-open.
func NewServer(cfg *config.Config, st *store.Store, kv storage.KV, rdb *redis.Client) (*Server, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	middleware.InitMiddleware(cfg)

	return &Server{
		config:         cfg,
		store:          st,
		kv:             kv,
		redis:          rdb,
		promMiddleware: fiberprometheus.New("classwall-api"),
	}, nil
}

// App builds the Fiber app with middleware and routes configured.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "classwall-api",
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Classwall Backend Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.RegisterUser)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", middleware.AuthRequired, s.Logout)
	auth.Get("/me", middleware.AuthRequired, s.GetMyProfile)

	// Public read routes. Visibility filtering depends on who asks, so the
	// optional-auth middleware resolves the caller when a token is present.
	publicPosts := api.Group("/posts", middleware.AuthOptional)
	publicPosts.Get("/", s.GetPosts)
	publicPosts.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.SearchPosts)
	publicPosts.Get("/:id/comments", s.GetComments)
	publicPosts.Post("/:id/views", s.RecordView)
	publicPosts.Get("/:id", s.GetPost)

	api.Get("/tags", s.GetTags)
	api.Get("/announcements", s.GetActiveAnnouncements)
	api.Get("/settings", s.GetSettings)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me/profile", s.UpdateMyProfile)
	users.Put("/me/avatar", s.UpdateMyAvatar)
	users.Get("/admins", s.GetAdmins)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id", s.GetUserProfile)

	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	posts.Post("/:id/like", s.LikePost)
	posts.Delete("/:id/like", s.UnlikePost)
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Delete("/:id", s.DeletePost)

	comments := protected.Group("/comments")
	comments.Delete("/:id", s.DeleteComment)

	// Moderation routes (owner or admin)
	moderation := protected.Group("/moderation", s.ModeratorRequired())
	moderation.Post("/users/:id/ban", s.BanUser)
	moderation.Post("/users/:id/unban", s.UnbanUser)
	moderation.Delete("/posts/:id", s.DeletePostByAdmin)
	moderation.Delete("/comments/:id", s.DeleteCommentByAdmin)
	moderation.Get("/posts", s.GetAllPostsForModeration)
	moderation.Get("/users", s.GetAllUsers)

	// Owner routes
	admin := protected.Group("/admin", s.OwnerRequired())
	admin.Post("/users/:id/appoint", s.AppointAdmin)
	admin.Post("/users/:id/dismiss", s.RemoveAdmin)
	admin.Delete("/users/:id", s.DeleteUser)
	admin.Post("/posts/:id/restore", s.RestorePost)
	admin.Delete("/posts/:id/permanent", s.PermanentlyDeletePost)
	admin.Get("/tags", s.GetTags)
	admin.Post("/tags", s.AddTag)
	admin.Delete("/tags/:tag", s.RemoveTag)
	admin.Get("/settings", s.GetSettings)
	admin.Put("/settings", s.UpdateSettings)
	admin.Get("/announcements", s.GetAnnouncements)
	admin.Post("/announcements", s.CreateAnnouncement)
	admin.Put("/announcements/:id", s.UpdateAnnouncement)
	admin.Delete("/announcements/:id", s.DeleteAnnouncement)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	storageStatus := "healthy"
	if _, err := s.store.GetSettings(ctx); err != nil {
		storageStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storageStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"storage": storageStatus,
			"redis":   redisStatus,
		},
		"time": time.Now(),
	})
}

// ModeratorRequired returns middleware that rejects callers who are neither
// owner nor admin. Must run after AuthRequired.
func (s *Server) ModeratorRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.store.GetUserByID(c.Context(), middleware.CurrentUserID(c))
		if err != nil {
			return models.RespondWithError(c, err)
		}
		if !user.IsModerator() {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Moderator access required"))
		}
		return c.Next()
	}
}

// OwnerRequired returns middleware that rejects everyone but the owner.
// Must run after AuthRequired.
func (s *Server) OwnerRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.store.GetUserByID(c.Context(), middleware.CurrentUserID(c))
		if err != nil {
			return models.RespondWithError(c, err)
		}
		if user.Role != models.RoleOwner {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Owner access required"))
		}
		return c.Next()
	}
}
