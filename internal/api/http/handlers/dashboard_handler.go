package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/pkg/apperrors"
)

// DashboardHandler serves the landing-page aggregates.
type DashboardHandler struct {
	reports *service.ReportService
	users   *service.UserAdminService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(reports *service.ReportService, users *service.UserAdminService) *DashboardHandler {
	return &DashboardHandler{reports: reports, users: users}
}

// Welcome GET /api/dashboard/welcome.
func (h *DashboardHandler) Welcome(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	stats, err := h.reports.TicketStats(c.Context(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{
		Success: true,
		Data: fiber.Map{
			"user":        dto.NewUserResponse(principal.User),
			"ticketStats": stats,
		},
	})
}

// UserStats GET /api/dashboard/stats. Admin only.
func (h *DashboardHandler) UserStats(c *fiber.Ctx) error {
	stats, err := h.users.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Success: true, Data: stats})
}

// RecentUsers GET /api/dashboard/users/recent. Admin only.
func (h *DashboardHandler) RecentUsers(c *fiber.Ctx) error {
	limit := parsePositive(c.Query("limit"), 5)
	users, err := h.users.RecentUsers(c.Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Success: true, Data: dto.NewUserResponses(users)})
}
