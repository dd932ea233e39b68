package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/pkg/apperrors"
)

// TicketsHandler manages end-user ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	reports *service.ReportService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, reports *service.ReportService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, reports: reports}
}

// Create POST /api/tickets/generate.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); len(details) > 0 {
		return apperrors.NewValidationError("ticket validation failed", details)
	}

	ticket, err := h.tickets.Create(c.Context(), principal.User, service.TicketCreateInput{
		Complaint: req.Complaint,
		Type:      domain.TicketType(req.Type),
		Priority:  domain.TicketPriority(req.Priority),
		RoomNo:    req.RoomNo,
		RaisedFor: req.RaisedFor,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Envelope{
		Success: true,
		Message: "ticket created",
		Data:    dto.NewTicketResponse(ticket),
	})
}

// ListOwn GET /api/tickets/user/:userId.
func (h *TicketsHandler) ListOwn(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	userID := c.Params("userId")
	if userID != principal.User.ID && !auth.SeesAllTickets(principal.Role()) {
		return apperrors.NewForbidden("access denied")
	}

	input := parseTicketListQuery(c)
	tickets, total, err := h.tickets.ListForUser(c.Context(), userID, input)
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

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, logs, err := h.tickets.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	resp := dto.NewTicketResponse(ticket)
	resp.Logs = dto.NewTicketLogResponses(logs)
	return c.JSON(dto.Envelope{Success: true, Data: resp})
}

// Stats GET /api/tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	stats, err := h.reports.TicketStats(c.Context(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Success: true, Data: stats})
}

// parseTicketListQuery reads the shared listing query parameters.
func parseTicketListQuery(c *fiber.Ctx) service.TicketListInput {
	input := service.TicketListInput{
		Page:  parsePositive(c.Query("page"), 1),
		Limit: parsePositive(c.Query("limit"), 10),
	}
	for _, raw := range splitQuery(c.Query("status")) {
		status := domain.TicketStatus(raw)
		if domain.ValidStatus(status) {
			input.Statuses = append(input.Statuses, status)
		}
	}
	for _, raw := range splitQuery(c.Query("type")) {
		ticketType := domain.TicketType(raw)
		if domain.ValidTicketType(ticketType) {
			input.Types = append(input.Types, ticketType)
		}
	}
	for _, raw := range splitQuery(c.Query("priority")) {
		input.Priorities = append(input.Priorities, domain.TicketPriority(raw))
	}
	return input
}

func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

func parsePositive(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
