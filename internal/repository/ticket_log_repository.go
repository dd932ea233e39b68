package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// TicketLogRepository records workflow actions for audit queries. Rows are
// derived from history transitions and written in the same transaction as
// the mutation that caused them.
type TicketLogRepository interface {
	Append(ctx context.Context, log *domain.TicketLog) error
	ListByTicket(ctx context.Context, ticketID string, limit int) ([]domain.TicketLog, error)
}

type ticketLogRepository struct {
	pool *pgxpool.Pool
}

// NewTicketLogRepository builds repository.
func NewTicketLogRepository(pool *pgxpool.Pool) TicketLogRepository {
	return &ticketLogRepository{pool: pool}
}

func (r *ticketLogRepository) Append(ctx context.Context, log *domain.TicketLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	var metadata []byte
	if log.Metadata != nil {
		raw, err := json.Marshal(log.Metadata)
		if err != nil {
			return err
		}
		metadata = raw
	}
	const query = `
        INSERT INTO ticket_logs
            (id, ticket_id, action, description, previous_status, new_status,
             previous_assignee, new_assignee, updated_by, metadata)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING created_at`
	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		log.ID,
		log.TicketID,
		log.Action,
		log.Description,
		log.PreviousStatus,
		log.NewStatus,
		log.PreviousAssignee,
		log.NewAssignee,
		log.UpdatedBy,
		metadata,
	).Scan(&log.CreatedAt)
}

func (r *ticketLogRepository) ListByTicket(ctx context.Context, ticketID string, limit int) ([]domain.TicketLog, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, ticket_id, action, description, previous_status, new_status,
               previous_assignee, new_assignee, updated_by, metadata, created_at
        FROM ticket_logs WHERE ticket_id=$1
        ORDER BY created_at DESC LIMIT $2`
	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, ticketID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketLog
	for rows.Next() {
		var (
			log domain.TicketLog
			raw []byte
		)
		if err := rows.Scan(
			&log.ID,
			&log.TicketID,
			&log.Action,
			&log.Description,
			&log.PreviousStatus,
			&log.NewStatus,
			&log.PreviousAssignee,
			&log.NewAssignee,
			&log.UpdatedBy,
			&raw,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &log.Metadata); err != nil {
				return nil, err
			}
		}
		result = append(result, log)
	}
	return result, rows.Err()
}
