package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/pkg/apperrors"
)

const unreadCountTTL = 5 * time.Minute

// NotificationService manages per-user notifications with a Redis-backed
// unread counter. The counter is a cache only; the database stays the
// source of truth and every read falls through on a cache miss.
type NotificationService struct {
	notifications repository.NotificationRepository
	redis         *redis.Client
	logger        *zap.Logger
}

// NewNotificationService constructs the service. The redis client may be
// nil, in which case every counter read hits the database.
func NewNotificationService(notifications repository.NotificationRepository, redisClient *redis.Client, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		redis:         redisClient,
		logger:        logger,
	}
}

// Record inserts a notification. It participates in any transaction carried
// by ctx, so workflow mutations and their notifications commit together.
func (s *NotificationService) Record(ctx context.Context, notification *domain.Notification) error {
	if err := s.notifications.Create(ctx, notification); err != nil {
		return apperrors.MapError(err)
	}
	s.invalidateUnread(ctx, notification.Recipient)
	return nil
}

// List returns the recipient's newest notifications.
func (s *NotificationService) List(ctx context.Context, recipient string, limit int) ([]domain.Notification, error) {
	items, err := s.notifications.ListByRecipient(ctx, recipient, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// MarkRead flips the read flag on one of the recipient's notifications.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipient string) error {
	if err := s.notifications.MarkRead(ctx, id, recipient); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("notification")
		}
		return apperrors.MapError(err)
	}
	s.invalidateUnread(ctx, recipient)
	return nil
}

// UnreadCount returns the recipient's unread total, served from Redis when
// warm and recomputed from the database otherwise.
func (s *NotificationService) UnreadCount(ctx context.Context, recipient string) (int64, error) {
	key := unreadCountKey(recipient)
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, key).Result(); err == nil {
			if count, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
				return count, nil
			}
		}
	}

	count, err := s.notifications.CountUnread(ctx, recipient)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if s.redis != nil {
		if err := s.redis.Set(ctx, key, count, unreadCountTTL).Err(); err != nil {
			s.logger.Warn("unread counter cache write failed", zap.Error(err))
		}
	}
	return count, nil
}

func (s *NotificationService) invalidateUnread(ctx context.Context, recipient string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, unreadCountKey(recipient)).Err(); err != nil {
		s.logger.Warn("unread counter invalidation failed", zap.Error(err))
	}
}

func unreadCountKey(recipient string) string {
	return fmt.Sprintf("notifications:unread:%s", recipient)
}
