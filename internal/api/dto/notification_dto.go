package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// NotificationResponse is one notification record.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	Sender    string                  `json:"sender"`
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	TicketID  string                  `json:"ticketId"`
	IsRead    bool                    `json:"isRead"`
	CreatedAt time.Time               `json:"createdAt"`
}

// NewNotificationResponses maps domain notifications.
func NewNotificationResponses(items []domain.Notification) []NotificationResponse {
	result := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		result = append(result, NotificationResponse{
			ID:        n.ID,
			Sender:    n.Sender,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			TicketID:  n.TicketID,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return result
}
