package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	// InvolvedUserID restricts to tickets the user raised or benefits from.
	InvolvedUserID *string
	AssignedTo     *string
	Statuses       []domain.TicketStatus
	Types          []domain.TicketType
	Priorities     []domain.TicketPriority
	Limit          int
	Offset         int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	// UpdateStatusIf writes the transition fields only when the stored
	// status still equals expected, returning pgx.ErrNoRows otherwise.
	// This is the atomicity guard against racing transitions.
	UpdateStatusIf(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountWithFilter(ctx context.Context, filter TicketFilter) (int64, error)
	StatusCounts(ctx context.Context, involvedUserID *string) (domain.TicketStats, error)
	// ListTouchedByStaff returns tickets created in [from, to) that the
	// staff member is assigned to or has touched through a history entry.
	ListTouchedByStaff(ctx context.Context, staffID string, from, to time.Time) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, type, status, priority, room_no,
               raised_by, raised_for, assigned_to, resolution, resolved_at, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO tickets (id, title, description, type, status, priority, room_no, raised_by, raised_for, assigned_to)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING created_at, updated_at`
	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Type,
		ticket.Status,
		ticket.Priority,
		ticket.RoomNo,
		ticket.RaisedBy,
		ticket.RaisedFor,
		ticket.AssignedTo,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, assigned_to=$5,
            resolution=$6, resolved_at=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := persistence.Conn(ctx, r.pool).Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedTo,
		ticket.Resolution,
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UpdateStatusIf(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error {
	const query = `
        UPDATE tickets SET status=$1, assigned_to=$2, resolution=$3, resolved_at=$4, updated_at=NOW()
        WHERE id=$5 AND status=$6`
	cmd, err := persistence.Conn(ctx, r.pool).Exec(ctx, query,
		ticket.Status,
		ticket.AssignedTo,
		ticket.Resolution,
		ticket.ResolvedAt,
		ticket.ID,
		expected,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := persistence.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Type,
		&ticket.Status,
		&ticket.Priority,
		&ticket.RoomNo,
		&ticket.RaisedBy,
		&ticket.RaisedFor,
		&ticket.AssignedTo,
		&ticket.Resolution,
		&ticket.ResolvedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses, args := ticketClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountWithFilter(ctx context.Context, filter TicketFilter) (int64, error) {
	clauses, args := ticketClauses(filter)
	query := `SELECT COUNT(*) FROM tickets WHERE ` + strings.Join(clauses, " AND ")
	var count int64
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *ticketRepository) StatusCounts(ctx context.Context, involvedUserID *string) (domain.TicketStats, error) {
	query := `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status='open'),
               COUNT(*) FILTER (WHERE status='resolved'),
               COUNT(*) FILTER (WHERE status='pending'),
               COUNT(*) FILTER (WHERE status='rejected'),
               COUNT(*) FILTER (WHERE type='incidental'),
               COUNT(*) FILTER (WHERE type='replacement')
        FROM tickets`
	args := []any{}
	if involvedUserID != nil {
		query += ` WHERE raised_by=$1 OR raised_for=$1`
		args = append(args, *involvedUserID)
	}

	var stats domain.TicketStats
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(
		&stats.Total,
		&stats.Open,
		&stats.Resolved,
		&stats.Pending,
		&stats.Rejected,
		&stats.Incidental,
		&stats.Replacement,
	)
	return stats, err
}

func (r *ticketRepository) ListTouchedByStaff(ctx context.Context, staffID string, from, to time.Time) ([]domain.Ticket, error) {
	const query = `
        SELECT ` + ticketColumns + `
        FROM tickets t
        WHERE t.created_at >= $2 AND t.created_at < $3
          AND (t.assigned_to = $1 OR EXISTS (
              SELECT 1 FROM ticket_history h WHERE h.ticket_id = t.id AND h.updated_by = $1))
        ORDER BY t.created_at DESC`
	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, staffID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func ticketClauses(filter TicketFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.InvolvedUserID != nil {
		args = append(args, *filter.InvolvedUserID)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(raised_by=%s OR raised_for=%s)", placeholder, placeholder))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			args = append(args, t)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	return clauses, args
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Type,
			&ticket.Status,
			&ticket.Priority,
			&ticket.RoomNo,
			&ticket.RaisedBy,
			&ticket.RaisedFor,
			&ticket.AssignedTo,
			&ticket.Resolution,
			&ticket.ResolvedAt,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
