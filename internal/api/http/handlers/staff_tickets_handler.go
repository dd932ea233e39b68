package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/pkg/apperrors"
)

// StaffTicketsHandler manages the staff workflow endpoints.
type StaffTicketsHandler struct {
	tickets *service.TicketService
	reports *service.ReportService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(tickets *service.TicketService, reports *service.ReportService) *StaffTicketsHandler {
	return &StaffTicketsHandler{tickets: tickets, reports: reports}
}

// ListAll GET /api/tickets.
func (h *StaffTicketsHandler) ListAll(c *fiber.Ctx) error {
	input := parseTicketListQuery(c)
	tickets, total, err := h.tickets.ListAll(c.Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{
		Success: true,
		Data: dto.TicketListResponse{
			Tickets:    dto.NewTicketResponses(tickets),
			Pagination: dto.NewPageMeta(input.Page, input.Limit, total),
		},
	})
}

// Accept PUT /api/tickets/:id/accept.
func (h *StaffTicketsHandler) Accept(c *fiber.Ctx) error {
	principal, req, err := h.transitionRequest(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.Accept(c.Context(), principal.User, c.Params("id"), req.Note)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{
		Success: true,
		Message: "ticket accepted",
		Data:    dto.NewTicketResponse(ticket),
	})
}

// Reject PUT /api/tickets/:id/reject.
func (h *StaffTicketsHandler) Reject(c *fiber.Ctx) error {
	principal, req, err := h.transitionRequest(c)
	if err != nil {
		return err
	}
	reason := req.Reason
	if reason == "" {
		reason = req.Note
	}
	ticket, err := h.tickets.Reject(c.Context(), principal.User, c.Params("id"), reason)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{
		Success: true,
		Message: "ticket rejected",
		Data:    dto.NewTicketResponse(ticket),
	})
}

// Complete PUT /api/tickets/:id/complete.
func (h *StaffTicketsHandler) Complete(c *fiber.Ctx) error {
	principal, req, err := h.transitionRequest(c)
	if err != nil {
		return err
	}
	resolution := req.Resolution
	if resolution == "" {
		resolution = req.Note
	}
	ticket, err := h.tickets.Complete(c.Context(), principal.User, c.Params("id"), resolution)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{
		Success: true,
		Message: "ticket completed",
		Data:    dto.NewTicketResponse(ticket),
	})
}

// Forward PUT /api/tickets/:id/forward.
func (h *StaffTicketsHandler) Forward(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ForwardRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); len(details) > 0 {
		return apperrors.NewValidationError("forward validation failed", details)
	}
	ticket, err := h.tickets.Forward(c.Context(), principal.User, c.Params("id"), req.AssignTo, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{
		Success: true,
		Message: "ticket forwarded",
		Data:    dto.NewTicketResponse(ticket),
	})
}

// OverrideStatus PUT /api/tickets/:id/status. Admin only.
func (h *StaffTicketsHandler) OverrideStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.OverrideStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); len(details) > 0 {
		return apperrors.NewValidationError("status validation failed", details)
	}
	ticket, err := h.tickets.AdminOverride(c.Context(), principal.User, c.Params("id"), domain.TicketStatus(req.Status), req.Note)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{
		Success: true,
		Message: "ticket status updated",
		Data:    dto.NewTicketResponse(ticket),
	})
}

// StaffDirectory GET /api/tickets/it-staff.
func (h *StaffTicketsHandler) StaffDirectory(c *fiber.Ctx) error {
	staff, err := h.reports.StaffDirectory(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Success: true, Data: dto.NewUserResponses(staff)})
}

// Performance GET /api/tickets/stats/it-staff.
func (h *StaffTicketsHandler) Performance(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	input := service.PerformanceInput{
		StaffID:  c.Query("staffId"),
		ViewType: service.PerformanceViewType(c.Query("viewType", string(service.ViewTypeDay))),
		Page:     parsePositive(c.Query("page"), 1),
		Limit:    parsePositive(c.Query("limit"), 0),
	}
	if raw := c.Query("start"); raw != "" {
		if start, err := time.Parse("2006-01-02", raw); err == nil {
			input.Start = &start
		}
	}
	if raw := c.Query("end"); raw != "" {
		if end, err := time.Parse("2006-01-02", raw); err == nil {
			input.End = &end
		}
	}

	report, err := h.reports.StaffPerformance(c.Context(), principal.User, input)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{
		Success: true,
		Data: fiber.Map{
			"staff":      report.Staff,
			"pagination": dto.NewPageMeta(report.Page, report.Limit, int64(report.TotalWindows)),
		},
	})
}

func (h *StaffTicketsHandler) transitionRequest(c *fiber.Ctx) (*auth.Principal, dto.TransitionRequest, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, dto.TransitionRequest{}, apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TransitionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return nil, dto.TransitionRequest{}, apperrors.NewValidationError("invalid payload", nil)
		}
	}
	return principal, req, nil
}
