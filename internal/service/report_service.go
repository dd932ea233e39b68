package service

import (
	"context"
	"time"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/pkg/apperrors"
)

// ReportService answers the aggregate queries: ticket stat counters and
// per-staff performance windows.
type ReportService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
}

// NewReportService constructs the service.
func NewReportService(tickets repository.TicketRepository, users repository.UserRepository) *ReportService {
	return &ReportService{tickets: tickets, users: users}
}

// TicketStats returns status and type counters scoped to the actor: roles
// without the all-tickets view only see tickets they raised or benefit from.
func (s *ReportService) TicketStats(ctx context.Context, actor *domain.User) (domain.TicketStats, error) {
	var scope *string
	if !auth.SeesAllTickets(actor.Role) {
		scope = &actor.ID
	}
	stats, err := s.tickets.StatusCounts(ctx, scope)
	if err != nil {
		return domain.TicketStats{}, apperrors.MapError(err)
	}
	return stats, nil
}

// StaffDirectory lists the accounts tickets can be forwarded to.
func (s *ReportService) StaffDirectory(ctx context.Context) ([]domain.User, error) {
	staff, err := s.users.List(ctx, repository.UserFilter{
		Roles: []domain.Role{domain.RoleAdmin, domain.RoleITStaff},
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}

// PerformanceViewType selects the bucketing granularity.
type PerformanceViewType string

const (
	ViewTypeDay   PerformanceViewType = "day"
	ViewTypeMonth PerformanceViewType = "month"
)

// PerformanceInput describes a staff performance query.
type PerformanceInput struct {
	// StaffID selects a single staff member; empty means all staff and is
	// only honored for admins.
	StaffID  string
	Start    *time.Time
	End      *time.Time
	ViewType PerformanceViewType
	Page     int
	Limit    int
}

// PerformanceWindow is one time bucket of counters for one staff member.
type PerformanceWindow struct {
	Label     string    `json:"label"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	Total     int       `json:"total"`
	Accepted  int       `json:"accepted"`
	Completed int       `json:"completed"`
	Rejected  int       `json:"rejected"`
	Open      int       `json:"open"`
}

// StaffPerformance bundles a staff member with their bucketed counters.
type StaffPerformance struct {
	StaffID     string              `json:"staffId"`
	Username    string              `json:"username"`
	DisplayName string              `json:"displayName"`
	Role        domain.Role         `json:"role"`
	Windows     []PerformanceWindow `json:"windows"`
}

// StaffPerformanceReport carries the result plus window pagination facts.
type StaffPerformanceReport struct {
	Staff        []StaffPerformance
	TotalWindows int
	Page         int
	Limit        int
}

// StaffPerformance computes per-window counters for one or all staff
// members. it_staff actors are pinned to themselves; only admins may query
// other staff or the whole roster. Tickets count toward a staff member when
// they are assigned or appear in the history trail, bucketed by creation
// time, with one repository query per staff member over the whole range.
func (s *ReportService) StaffPerformance(ctx context.Context, actor *domain.User, input PerformanceInput) (*StaffPerformanceReport, error) {
	if actor.Role != domain.RoleAdmin {
		if input.StaffID != "" && input.StaffID != actor.ID {
			return nil, apperrors.NewForbidden("access denied")
		}
		input.StaffID = actor.ID
	}

	windows := buildWindows(input.ViewType, input.Start, input.End)
	if len(windows) == 0 {
		return nil, apperrors.NewValidationError("invalid reporting range", nil)
	}

	page := input.Page
	if page <= 0 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = len(windows)
	}
	pageWindows := paginateWindows(windows, page, limit)

	var staff []domain.User
	if input.StaffID != "" {
		member, err := s.users.GetByID(ctx, input.StaffID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if !member.Role.IsStaff() {
			return nil, apperrors.NewValidationError("not a staff account", nil)
		}
		staff = []domain.User{*member}
	} else {
		var err error
		staff, err = s.StaffDirectory(ctx)
		if err != nil {
			return nil, err
		}
	}

	report := &StaffPerformanceReport{
		TotalWindows: len(windows),
		Page:         page,
		Limit:        limit,
	}
	if len(pageWindows) == 0 {
		return report, nil
	}
	rangeFrom := pageWindows[len(pageWindows)-1].From
	rangeTo := pageWindows[0].To

	for _, member := range staff {
		tickets, err := s.tickets.ListTouchedByStaff(ctx, member.ID, rangeFrom, rangeTo)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		entry := StaffPerformance{
			StaffID:     member.ID,
			Username:    member.Username,
			DisplayName: member.DisplayName,
			Role:        member.Role,
			Windows:     bucketTickets(tickets, pageWindows),
		}
		report.Staff = append(report.Staff, entry)
	}
	return report, nil
}

// buildWindows produces the bucket list oldest-first. Day view defaults to
// the last 30 days, month view to the last 6 months; an explicit start/end
// pair overrides the rolling default.
func buildWindows(viewType PerformanceViewType, start, end *time.Time) []PerformanceWindow {
	now := time.Now()
	switch viewType {
	case ViewTypeMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -5, 0)
		last := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
		if start != nil && end != nil && end.After(*start) {
			first = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
			last = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location()).AddDate(0, 1, 0)
		}
		var windows []PerformanceWindow
		for from := first; from.Before(last); from = from.AddDate(0, 1, 0) {
			windows = append(windows, PerformanceWindow{
				Label: from.Format("2006-01"),
				From:  from,
				To:    from.AddDate(0, 1, 0),
			})
		}
		return windows
	default:
		first := now.AddDate(0, 0, -29)
		first = time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location())
		last := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
		if start != nil && end != nil && end.After(*start) {
			first = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			last = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location()).AddDate(0, 0, 1)
		}
		var windows []PerformanceWindow
		for from := first; from.Before(last); from = from.AddDate(0, 0, 1) {
			windows = append(windows, PerformanceWindow{
				Label: from.Format("2006-01-02"),
				From:  from,
				To:    from.AddDate(0, 0, 1),
			})
		}
		return windows
	}
}

// paginateWindows slices the bucket list newest-first.
func paginateWindows(windows []PerformanceWindow, page, limit int) []PerformanceWindow {
	reversed := make([]PerformanceWindow, len(windows))
	for i, w := range windows {
		reversed[len(windows)-1-i] = w
	}
	offset := (page - 1) * limit
	if offset >= len(reversed) {
		return nil
	}
	end := offset + limit
	if end > len(reversed) {
		end = len(reversed)
	}
	return reversed[offset:end]
}

// bucketTickets assigns tickets to windows by creation time and counts per
// status. A ticket counts as accepted once it has left pending.
func bucketTickets(tickets []domain.Ticket, windows []PerformanceWindow) []PerformanceWindow {
	result := make([]PerformanceWindow, len(windows))
	copy(result, windows)
	for _, ticket := range tickets {
		for i := range result {
			if ticket.CreatedAt.Before(result[i].From) || !ticket.CreatedAt.Before(result[i].To) {
				continue
			}
			result[i].Total++
			if ticket.Status != domain.TicketStatusPending {
				result[i].Accepted++
			}
			switch ticket.Status {
			case domain.TicketStatusResolved:
				result[i].Completed++
			case domain.TicketStatusRejected:
				result[i].Rejected++
			case domain.TicketStatusOpen:
				result[i].Open++
			}
			break
		}
	}
	return result
}
