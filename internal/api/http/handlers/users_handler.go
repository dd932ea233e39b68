package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/pkg/apperrors"
)

// UsersHandler manages the admin account endpoints.
type UsersHandler struct {
	users *service.UserAdminService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserAdminService) *UsersHandler {
	return &UsersHandler{users: users}
}

// List GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	page := parsePositive(c.Query("page"), 1)
	limit := parsePositive(c.Query("limit"), 50)
	filter := repository.UserFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	for _, raw := range splitQuery(c.Query("role")) {
		role := domain.Role(raw)
		if domain.ValidRole(role) {
			filter.Roles = append(filter.Roles, role)
		}
	}

	users, total, err := h.users.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{
		Success: true,
		Data: dto.UserListResponse{
			Users:      dto.NewUserResponses(users),
			Pagination: dto.NewPageMeta(page, limit, total),
		},
	})
}

// Create POST /api/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.AdminCreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); len(details) > 0 {
		return apperrors.NewValidationError("user validation failed", details)
	}

	user, err := h.users.Create(c.Context(), service.AdminUserInput{
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Role:        domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Envelope{
		Success: true,
		Message: "user created",
		Data:    dto.NewUserResponse(user),
	})
}

// Update PUT /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.AdminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); len(details) > 0 {
		return apperrors.NewValidationError("user validation failed", details)
	}

	user, err := h.users.Update(c.Context(), c.Params("id"), service.AdminUserInput{
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Role:        domain.Role(req.Role),
		Active:      req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{
		Success: true,
		Message: "user updated",
		Data:    dto.NewUserResponse(user),
	})
}

// ChangeRole PUT /api/users/:id/role.
func (h *UsersHandler) ChangeRole(c *fiber.Ctx) error {
	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); len(details) > 0 {
		return apperrors.NewValidationError("role validation failed", details)
	}

	user, err := h.users.ChangeRole(c.Context(), c.Params("id"), domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{
		Success: true,
		Message: "role updated",
		Data:    dto.NewUserResponse(user),
	})
}

// Delete DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.users.Delete(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Success: true, Message: "user deleted"})
}

// RoleStats GET /api/users/roles/stats.
func (h *UsersHandler) RoleStats(c *fiber.Ctx) error {
	stats, err := h.users.RoleStats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Success: true, Data: stats})
}
