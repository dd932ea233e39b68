package domain

import "time"

// NotificationType enumerates the ticket events a notification can announce.
type NotificationType string

const (
	NotificationTicketAccepted  NotificationType = "ticket_accepted"
	NotificationTicketRejected  NotificationType = "ticket_rejected"
	NotificationTicketCompleted NotificationType = "ticket_completed"
	NotificationTicketForwarded NotificationType = "ticket_forwarded"
	NotificationTicketAssigned  NotificationType = "ticket_assigned"
)

// Notification is a one-way message from a sender to a recipient about a
// ticket event. Only the read flag ever changes after creation.
type Notification struct {
	ID        string
	Recipient string
	Sender    string
	Type      NotificationType
	Title     string
	Message   string
	TicketID  string
	IsRead    bool
	CreatedAt time.Time
}
