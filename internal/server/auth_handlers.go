package server

import (
	"fmt"
	"time"

	"classwall/internal/middleware"
	"classwall/internal/models"
	"classwall/internal/store"
	"classwall/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RegisterUser handles POST /api/auth/register
func (s *Server) RegisterUser(c *fiber.Ctx) error {
	var req struct {
		Username       string          `json:"username"`
		Nickname       string          `json:"nickname"`
		Password       string          `json:"password"`
		EnrollmentYear int             `json:"enrollmentYear"`
		ClassNumber    int             `json:"classNumber"`
		Avatar         string          `json:"avatar"`
		Profile        *models.Profile `json:"profile"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	settings, err := s.store.GetSettings(c.Context())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if !settings.AllowRegistration {
		return models.RespondWithError(c,
			models.NewInvalidStateError("Registration is currently closed"))
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		return models.RespondWithError(c, models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateNickname(req.Nickname); err != nil {
		return models.RespondWithError(c, models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, models.NewValidationError(err.Error()))
	}

	user, err := s.store.Register(c.Context(), store.RegisterInput{
		Username:       req.Username,
		Nickname:       req.Nickname,
		Password:       req.Password,
		EnrollmentYear: req.EnrollmentYear,
		ClassNumber:    req.ClassNumber,
		Avatar:         req.Avatar,
		Profile:        req.Profile,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user.Redacted(),
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.store.GetUserByUsername(c.Context(), req.Username)
	if err != nil {
		if models.CodeOf(err) == models.CodeNotFound {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid credentials",
			})
		}
		return models.RespondWithError(c, err)
	}
	if user.Password != req.Password {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	// The ban check also lifts expired timed bans.
	banned, err := s.store.IsUserBanned(c.Context(), user.ID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if banned {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "Account is banned",
			"banInfo": user.BanInfo,
		})
	}

	// Re-read in case the expiry check restored the account.
	user, err = s.store.GetUserByID(c.Context(), user.ID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.store.SetCurrentUser(c.Context(), user); err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": token,
		"user":  user.Redacted(),
	})
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.store.ClearCurrentUser(c.Context()); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out",
	})
}

// generateToken creates a signed JWT for the given user.
func (s *Server) generateToken(userID, username string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"iss":      "classwall-api",
		"aud":      "classwall-client",
		"exp":      now.Add(time.Hour * 24 * 7).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

// currentUser resolves the authenticated caller from locals.
func (s *Server) currentUser(c *fiber.Ctx) (*models.User, error) {
	uid := middleware.CurrentUserID(c)
	if uid == "" {
		return nil, models.NewUnauthorizedError("Authorization required")
	}
	return s.store.GetUserByID(c.Context(), uid)
}
