package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/pkg/apperrors"
)

// AuthHandler manages registration, sessions and profiles.
type AuthHandler struct {
	service *service.AuthService
	cfg     config.AuthConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{service: authService, cfg: cfg}
}

// Register POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); len(details) > 0 {
		return apperrors.NewValidationError("registration validation failed", details)
	}

	user, err := h.service.Register(c.Context(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Envelope{
		Success: true,
		Message: "account created",
		Data:    dto.NewUserResponse(user),
	})
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); len(details) > 0 {
		return apperrors.NewValidationError("login validation failed", details)
	}

	result, err := h.service.Login(c.Context(), req.Identifier, req.Password, req.RememberMe)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.TokenCookieName,
		Value:    result.Token,
		Expires:  result.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return c.JSON(dto.Envelope{
		Success: true,
		Message: "login successful",
		Data: dto.AuthResponse{
			User:      dto.NewUserResponse(result.User),
			Token:     result.Token,
			ExpiresAt: result.ExpiresAt,
		},
	})
}

// Logout POST /api/auth/logout. Sessions are stateless; only the cookie
// is cleared.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     auth.TokenCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return c.JSON(dto.Envelope{Success: true, Message: "logged out"})
}

// ForgotPassword POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); len(details) > 0 {
		return apperrors.NewValidationError("email is required", details)
	}
	if err := h.service.ForgotPassword(c.Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Success: true, Message: "a new password has been sent to your email"})
}

// Me GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(dto.Envelope{Success: true, Data: dto.NewUserResponse(principal.User)})
}

// CheckUsername GET /api/profile/check-username/:username. Public so the
// registration form can probe availability before submitting.
func (h *AuthHandler) CheckUsername(c *fiber.Ctx) error {
	available, message, err := h.service.CheckUsername(c.Context(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"available": available, "message": message})
}

// UpdateProfile PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); len(details) > 0 {
		return apperrors.NewValidationError("profile validation failed", details)
	}

	user, err := h.service.UpdateProfile(c.Context(), principal.User, service.ProfileUpdateInput{
		Username:        req.Username,
		Email:           req.Email,
		DisplayName:     req.DisplayName,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{
		Success: true,
		Message: "profile updated",
		Data:    dto.NewUserResponse(user),
	})
}
