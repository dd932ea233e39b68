package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// The redis client is nil here so every counter read exercises the
// database fallback path.
func TestNotificationLifecycle(t *testing.T) {
	repo := &fakeNotificationRepo{}
	service := NewNotificationService(repo, nil, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, service.Record(ctx, &domain.Notification{
			Recipient: "u1",
			Sender:    "u2",
			Type:      domain.NotificationTicketAccepted,
			Title:     "Ticket Accepted",
			Message:   "your ticket moved",
			TicketID:  "t1",
		}))
	}

	count, err := service.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	items, err := service.List(ctx, "u1", 20)
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.NoError(t, service.MarkRead(ctx, items[0].ID, "u1"))
	count, err = service.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestMarkReadIsScopedToRecipient(t *testing.T) {
	repo := &fakeNotificationRepo{}
	service := NewNotificationService(repo, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, service.Record(ctx, &domain.Notification{
		Recipient: "u1",
		Sender:    "u2",
		Type:      domain.NotificationTicketRejected,
		Title:     "Ticket Rejected",
		Message:   "sorry",
		TicketID:  "t1",
	}))
	items, err := service.List(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)

	err = service.MarkRead(ctx, items[0].ID, "intruder")
	assertErrorCode(t, err, "NOT_FOUND")

	count, err := service.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "foreign mark-read must not consume the unread item")
}

func TestListIsScopedToRecipient(t *testing.T) {
	repo := &fakeNotificationRepo{}
	service := NewNotificationService(repo, nil, zap.NewNop())
	ctx := context.Background()

	for _, recipient := range []string{"u1", "u2", "u1"} {
		require.NoError(t, service.Record(ctx, &domain.Notification{
			Recipient: recipient,
			Sender:    "system",
			Type:      domain.NotificationTicketCompleted,
			Title:     "Ticket Completed",
			Message:   "done",
			TicketID:  "t1",
		}))
	}

	items, err := service.List(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = service.List(ctx, "u2", 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
