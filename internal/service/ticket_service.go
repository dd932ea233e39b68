package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/directory"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/pkg/apperrors"
)

// TicketService coordinates the ticket workflow. Every mutation runs as one
// transaction covering the ticket row, the history entry, the audit log row
// and any notification, so readers never observe a partial transition.
type TicketService struct {
	tickets       repository.TicketRepository
	history       repository.TicketHistoryRepository
	logs          repository.TicketLogRepository
	users         repository.UserRepository
	notifications *NotificationService
	lookup        directory.Lookup
	tx            repository.TxRunner
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	HistoryRepo   repository.TicketHistoryRepository
	LogRepo       repository.TicketLogRepository
	UserRepo      repository.UserRepository
	Notifications *NotificationService
	Lookup        directory.Lookup
	TxRunner      repository.TxRunner
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:       deps.TicketRepo,
		history:       deps.HistoryRepo,
		logs:          deps.LogRepo,
		users:         deps.UserRepo,
		notifications: deps.Notifications,
		lookup:        deps.Lookup,
		tx:            deps.TxRunner,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Complaint string
	Type      domain.TicketType
	Priority  domain.TicketPriority
	RoomNo    string
	RaisedFor string
}

// TicketListInput describes listing parameters.
type TicketListInput struct {
	Statuses   []domain.TicketStatus
	Types      []domain.TicketType
	Priorities []domain.TicketPriority
	Page       int
	Limit      int
}

// Create registers a new pending ticket for the actor.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if details := validateTicketInput(input); len(details) > 0 {
		return nil, apperrors.NewValidationError("ticket validation failed", details)
	}

	var raisedFor *string
	if ref := strings.TrimSpace(input.RaisedFor); ref != "" {
		beneficiary, err := s.lookup.Resolve(ctx, ref)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if beneficiary != nil {
			raisedFor = &beneficiary.ID
		}
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}

	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		Title:       domain.DeriveTitle(input.Complaint),
		Description: strings.TrimSpace(input.Complaint),
		Type:        input.Type,
		Status:      domain.TicketStatusPending,
		Priority:    priority,
		RoomNo:      strings.TrimSpace(input.RoomNo),
		RaisedBy:    actor.ID,
		RaisedFor:   raisedFor,
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return err
		}
		if err := s.history.Append(ctx, &domain.HistoryEntry{
			TicketID:  ticket.ID,
			Status:    domain.TicketStatusPending,
			Note:      "Ticket created",
			UpdatedBy: actor.ID,
		}); err != nil {
			return err
		}
		newStatus := domain.TicketStatusPending
		return s.logs.Append(ctx, &domain.TicketLog{
			TicketID:    ticket.ID,
			Action:      domain.LogActionCreated,
			Description: fmt.Sprintf("Ticket %s created", ticket.Number()),
			NewStatus:   &newStatus,
			UpdatedBy:   actor.ID,
			Metadata:    map[string]any{"type": ticket.Type, "room_no": ticket.RoomNo},
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCreatedPayload{
			Number:   ticket.Number(),
			Type:     ticket.Type,
			Priority: ticket.Priority,
			Title:    ticket.Title,
		},
	})
	return ticket, nil
}

// Accept moves a pending ticket to open and assigns it to the actor.
func (s *TicketService) Accept(ctx context.Context, actor *domain.User, ticketID, note string) (*domain.Ticket, error) {
	if note == "" {
		note = "Ticket accepted"
	}
	return s.applyTransition(ctx, actor, ticketID, transition{
		from:   domain.TicketStatusPending,
		to:     domain.TicketStatusOpen,
		action: domain.LogActionAccepted,
		note:   note,
		mutate: func(t *domain.Ticket) {
			t.AssignedTo = &actor.ID
		},
		notify: func(t *domain.Ticket) *domain.Notification {
			return &domain.Notification{
				Recipient: t.RaisedBy,
				Sender:    actor.ID,
				Type:      domain.NotificationTicketAccepted,
				Title:     "Ticket Accepted",
				Message:   fmt.Sprintf("Your ticket %s has been accepted by %s", t.Number(), actor.DisplayName),
				TicketID:  t.ID,
			}
		},
	})
}

// Reject moves a pending ticket to rejected.
func (s *TicketService) Reject(ctx context.Context, actor *domain.User, ticketID, reason string) (*domain.Ticket, error) {
	if reason == "" {
		reason = "No reason provided"
	}
	return s.applyTransition(ctx, actor, ticketID, transition{
		from:   domain.TicketStatusPending,
		to:     domain.TicketStatusRejected,
		action: domain.LogActionRejected,
		note:   reason,
		notify: func(t *domain.Ticket) *domain.Notification {
			return &domain.Notification{
				Recipient: t.RaisedBy,
				Sender:    actor.ID,
				Type:      domain.NotificationTicketRejected,
				Title:     "Ticket Rejected",
				Message:   fmt.Sprintf("Your ticket %s has been rejected: %s", t.Number(), reason),
				TicketID:  t.ID,
			}
		},
	})
}

// Complete moves an open ticket to resolved and stores the resolution.
func (s *TicketService) Complete(ctx context.Context, actor *domain.User, ticketID, resolution string) (*domain.Ticket, error) {
	if resolution == "" {
		resolution = "Ticket resolved"
	}
	return s.applyTransition(ctx, actor, ticketID, transition{
		from:   domain.TicketStatusOpen,
		to:     domain.TicketStatusResolved,
		action: domain.LogActionCompleted,
		note:   resolution,
		mutate: func(t *domain.Ticket) {
			t.Resolution = &resolution
			now := time.Now()
			t.ResolvedAt = &now
		},
		notify: func(t *domain.Ticket) *domain.Notification {
			return &domain.Notification{
				Recipient: t.RaisedBy,
				Sender:    actor.ID,
				Type:      domain.NotificationTicketCompleted,
				Title:     "Ticket Completed",
				Message:   fmt.Sprintf("Your ticket %s has been resolved", t.Number()),
				TicketID:  t.ID,
			}
		},
	})
}

// Forward reassigns an open ticket to another staff member. The ticket
// stays open; only the assignee changes. The target is taken as a user ID,
// which is what the staff directory endpoint hands out; free-text
// references fall back to the directory lookup chain.
func (s *TicketService) Forward(ctx context.Context, actor *domain.User, ticketID, assigneeRef, note string) (*domain.Ticket, error) {
	assignee, err := s.resolveStaffRef(ctx, assigneeRef)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if assignee == nil || !assignee.Role.IsStaff() {
		return nil, apperrors.NewValidationError("forward target must be a staff member", nil)
	}
	if note == "" {
		note = fmt.Sprintf("Forwarded to %s", assignee.DisplayName)
	}

	var previousAssignee *string
	ticket, err := s.applyTransition(ctx, actor, ticketID, transition{
		from:   domain.TicketStatusOpen,
		to:     domain.TicketStatusOpen,
		action: domain.LogActionForwarded,
		note:   note,
		mutate: func(t *domain.Ticket) {
			previousAssignee = t.AssignedTo
			t.AssignedTo = &assignee.ID
		},
		newAssignee: &assignee.ID,
		notify: func(t *domain.Ticket) *domain.Notification {
			return &domain.Notification{
				Recipient: assignee.ID,
				Sender:    actor.ID,
				Type:      domain.NotificationTicketForwarded,
				Title:     "Ticket Forwarded",
				Message:   fmt.Sprintf("Ticket %s has been forwarded to you by %s", t.Number(), actor.DisplayName),
				TicketID:  t.ID,
			}
		},
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketForwarded,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketForwardedPayload{
			PreviousAssignee: previousAssignee,
			NewAssignee:      assignee.ID,
		},
	})
	return ticket, nil
}

// AdminOverride sets any status directly, bypassing the guarded transition
// table. The bypass is recorded with its own log action so audit queries
// can tell overrides from workflow moves.
func (s *TicketService) AdminOverride(ctx context.Context, actor *domain.User, ticketID string, status domain.TicketStatus, note string) (*domain.Ticket, error) {
	if !domain.ValidStatus(status) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid status %q", status), nil)
	}
	if note == "" {
		note = fmt.Sprintf("Status set to %s by administrator", status)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	previous := ticket.Status

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		ticket.Status = status
		if status == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
			now := time.Now()
			ticket.ResolvedAt = &now
		}
		if err := s.tickets.UpdateStatusIf(ctx, ticket, previous); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewInvalidState("ticket status changed concurrently")
			}
			return err
		}
		if err := s.history.Append(ctx, &domain.HistoryEntry{
			TicketID:  ticket.ID,
			Status:    status,
			Note:      note,
			UpdatedBy: actor.ID,
		}); err != nil {
			return err
		}
		return s.logs.Append(ctx, &domain.TicketLog{
			TicketID:       ticket.ID,
			Action:         domain.LogActionAdminOverride,
			Description:    note,
			PreviousStatus: &previous,
			NewStatus:      &status,
			UpdatedBy:      actor.ID,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: previous,
			NewStatus: status,
			Note:      note,
		},
	})
	return ticket, nil
}

// Get returns a ticket with its history, enforcing visibility: roles
// without the all-tickets scope must be the raiser or the beneficiary.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, []domain.TicketLog, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	if !auth.SeesAllTickets(actor.Role) && !involvesUser(ticket, actor.ID) {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	ticket.History, err = s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	logs, err := s.logs.ListByTicket(ctx, ticket.ID, 20)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, logs, nil
}

// ListForUser returns the tickets a user raised or benefits from.
func (s *TicketService) ListForUser(ctx context.Context, userID string, input TicketListInput) ([]domain.Ticket, int64, error) {
	filter := repository.TicketFilter{
		InvolvedUserID: &userID,
		Statuses:       input.Statuses,
		Types:          input.Types,
		Priorities:     input.Priorities,
	}
	return s.list(ctx, filter, input)
}

// ListAll returns tickets across all users for staff and admin views.
func (s *TicketService) ListAll(ctx context.Context, input TicketListInput) ([]domain.Ticket, int64, error) {
	filter := repository.TicketFilter{
		Statuses:   input.Statuses,
		Types:      input.Types,
		Priorities: input.Priorities,
	}
	return s.list(ctx, filter, input)
}

func (s *TicketService) list(ctx context.Context, filter repository.TicketFilter, input TicketListInput) ([]domain.Ticket, int64, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}
	page := input.Page
	if page <= 0 {
		page = 1
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	total, err := s.tickets.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return tickets, total, nil
}

// transition describes one guarded workflow move.
type transition struct {
	from        domain.TicketStatus
	to          domain.TicketStatus
	action      domain.TicketLogAction
	note        string
	mutate      func(*domain.Ticket)
	notify      func(*domain.Ticket) *domain.Notification
	newAssignee *string
}

// applyTransition performs a guarded move as one transaction. The status
// guard is re-checked by the conditional update, so two racing actors on
// the same ticket yield exactly one success.
func (s *TicketService) applyTransition(ctx context.Context, actor *domain.User, ticketID string, tr transition) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	previous := ticket.Status
	if previous != tr.from || !domain.CanTransition(tr.from, tr.to) {
		return nil, apperrors.NewInvalidState(
			fmt.Sprintf("cannot move ticket from %s to %s", previous, tr.to))
	}
	previousAssignee := ticket.AssignedTo

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		ticket.Status = tr.to
		if tr.mutate != nil {
			tr.mutate(ticket)
		}
		if err := s.tickets.UpdateStatusIf(ctx, ticket, tr.from); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewInvalidState(
					fmt.Sprintf("ticket is no longer %s", previous))
			}
			return err
		}
		if err := s.history.Append(ctx, &domain.HistoryEntry{
			TicketID:  ticket.ID,
			Status:    tr.to,
			Note:      tr.note,
			UpdatedBy: actor.ID,
		}); err != nil {
			return err
		}
		to := tr.to
		if err := s.logs.Append(ctx, &domain.TicketLog{
			TicketID:         ticket.ID,
			Action:           tr.action,
			Description:      tr.note,
			PreviousStatus:   &previous,
			NewStatus:        &to,
			PreviousAssignee: previousAssignee,
			NewAssignee:      tr.newAssignee,
			UpdatedBy:        actor.ID,
		}); err != nil {
			return err
		}
		if tr.notify != nil {
			if notification := tr.notify(ticket); notification != nil {
				return s.notifications.Record(ctx, notification)
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if tr.action != domain.LogActionForwarded {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			ActorID:  actor.ID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: previous,
				NewStatus: tr.to,
				Note:      tr.note,
			},
		})
	}
	return ticket, nil
}

// resolveStaffRef resolves a forward target: by user ID first, then through
// the directory chain. A miss yields (nil, nil).
func (s *TicketService) resolveStaffRef(ctx context.Context, ref string) (*domain.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, ref)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	return s.lookup.Resolve(ctx, ref)
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.Error(err))
	}
}

func involvesUser(ticket *domain.Ticket, userID string) bool {
	if ticket.RaisedBy == userID {
		return true
	}
	return ticket.RaisedFor != nil && *ticket.RaisedFor == userID
}

func validateTicketInput(input TicketCreateInput) []string {
	var details []string
	complaint := strings.TrimSpace(input.Complaint)
	if len(complaint) < 10 || len(complaint) > 2000 {
		details = append(details, "Complaint must be between 10 and 2000 characters")
	}
	if !domain.ValidTicketType(input.Type) {
		details = append(details, "Ticket type must be incidental or replacement")
	}
	room := strings.TrimSpace(input.RoomNo)
	if room == "" || !digitsOnly(room) {
		details = append(details, "Room number must contain digits only")
	}
	if input.Priority != "" {
		switch input.Priority {
		case domain.TicketPriorityLow, domain.TicketPriorityMedium,
			domain.TicketPriorityHigh, domain.TicketPriorityUrgent:
		default:
			details = append(details, "Priority must be low, medium, high or urgent")
		}
	}
	return details
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
