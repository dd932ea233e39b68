package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// NotificationRepository stores per-user notifications. Records never change
// after insert apart from the is_read flag.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByRecipient(ctx context.Context, recipient string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, recipient string) error
	CountUnread(ctx context.Context, recipient string) (int64, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO notifications (id, recipient_id, sender_id, ticket_id, type, title, message, is_read)
        VALUES ($1,$2,$3,$4,$5,$6,$7,false)
        RETURNING created_at`
	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		notification.ID,
		notification.Recipient,
		notification.Sender,
		notification.TicketID,
		notification.Type,
		notification.Title,
		notification.Message,
	).Scan(&notification.CreatedAt)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipient string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
        SELECT id, recipient_id, sender_id, ticket_id, type, title, message, is_read, created_at
        FROM notifications WHERE recipient_id=$1
        ORDER BY created_at DESC LIMIT $2`
	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, recipient, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.Recipient,
			&n.Sender,
			&n.TicketID,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// MarkRead is scoped by recipient so a user cannot flip another user's rows.
func (r *notificationRepository) MarkRead(ctx context.Context, id, recipient string) error {
	const query = `UPDATE notifications SET is_read=true WHERE id=$1 AND recipient_id=$2`
	tag, err := persistence.Conn(ctx, r.pool).Exec(ctx, query, id, recipient)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipient string) (int64, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE recipient_id=$1 AND is_read=false`
	var count int64
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, recipient).Scan(&count)
	return count, err
}
