package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload. The title is derived server-side from the
// complaint text.
type CreateTicketRequest struct {
	Complaint string `json:"complaint" validate:"required,min=10,max=2000"`
	Type      string `json:"type" validate:"required,oneof=incidental replacement"`
	Priority  string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	RoomNo    string `json:"roomNo" validate:"required,numeric"`
	RaisedFor string `json:"raisedFor" validate:"omitempty,max=100"`
}

// TransitionRequest payload shared by accept, reject and complete.
type TransitionRequest struct {
	Note       string `json:"note" validate:"omitempty,max=1000"`
	Reason     string `json:"reason" validate:"omitempty,max=1000"`
	Resolution string `json:"resolution" validate:"omitempty,max=2000"`
}

// ForwardRequest payload.
type ForwardRequest struct {
	AssignTo string `json:"assignTo" validate:"required,max=100"`
	Note     string `json:"note" validate:"omitempty,max=1000"`
}

// OverrideStatusRequest payload for the admin status override.
type OverrideStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending open in-progress resolved closed rejected"`
	Note   string `json:"note" validate:"omitempty,max=1000"`
}

// HistoryEntryResponse is one transition record.
type HistoryEntryResponse struct {
	Status    domain.TicketStatus `json:"status"`
	Note      string              `json:"note"`
	UpdatedBy string              `json:"updatedBy"`
	CreatedAt time.Time           `json:"createdAt"`
}

// TicketLogResponse is one audit log row.
type TicketLogResponse struct {
	Action         domain.TicketLogAction `json:"action"`
	Description    string                 `json:"description"`
	PreviousStatus *domain.TicketStatus   `json:"previousStatus,omitempty"`
	NewStatus      *domain.TicketStatus   `json:"newStatus,omitempty"`
	UpdatedBy      string                 `json:"updatedBy"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// TicketResponse is the full ticket shape.
type TicketResponse struct {
	ID          string                 `json:"id"`
	Number      string                 `json:"ticketNumber"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Type        domain.TicketType      `json:"type"`
	Status      domain.TicketStatus    `json:"status"`
	Priority    domain.TicketPriority  `json:"priority"`
	RoomNo      string                 `json:"roomNo"`
	RaisedBy    string                 `json:"raisedBy"`
	RaisedFor   *string                `json:"raisedFor,omitempty"`
	AssignedTo  *string                `json:"assignedTo,omitempty"`
	Resolution  *string                `json:"resolution,omitempty"`
	ResolvedAt  *time.Time             `json:"resolvedAt,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
	History     []HistoryEntryResponse `json:"history,omitempty"`
	Logs        []TicketLogResponse    `json:"logs,omitempty"`
}

// TicketListResponse pairs tickets with pagination facts.
type TicketListResponse struct {
	Tickets    []TicketResponse `json:"tickets"`
	Pagination PageMeta         `json:"pagination"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:          ticket.ID,
		Number:      ticket.Number(),
		Title:       ticket.Title,
		Description: ticket.Description,
		Type:        ticket.Type,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		RoomNo:      ticket.RoomNo,
		RaisedBy:    ticket.RaisedBy,
		RaisedFor:   ticket.RaisedFor,
		AssignedTo:  ticket.AssignedTo,
		Resolution:  ticket.Resolution,
		ResolvedAt:  ticket.ResolvedAt,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
	for _, entry := range ticket.History {
		resp.History = append(resp.History, HistoryEntryResponse{
			Status:    entry.Status,
			Note:      entry.Note,
			UpdatedBy: entry.UpdatedBy,
			CreatedAt: entry.CreatedAt,
		})
	}
	return resp
}

// NewTicketResponses maps a slice of tickets.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	result := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, NewTicketResponse(&tickets[i]))
	}
	return result
}

// NewTicketLogResponses maps audit log rows.
func NewTicketLogResponses(logs []domain.TicketLog) []TicketLogResponse {
	result := make([]TicketLogResponse, 0, len(logs))
	for _, log := range logs {
		result = append(result, TicketLogResponse{
			Action:         log.Action,
			Description:    log.Description,
			PreviousStatus: log.PreviousStatus,
			NewStatus:      log.NewStatus,
			UpdatedBy:      log.UpdatedBy,
			CreatedAt:      log.CreatedAt,
		})
	}
	return result
}
