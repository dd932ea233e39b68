package domain

import "time"

// TicketLogAction captures what a workflow log row records.
type TicketLogAction string

const (
	LogActionCreated       TicketLogAction = "created"
	LogActionAccepted      TicketLogAction = "accepted"
	LogActionRejected      TicketLogAction = "rejected"
	LogActionCompleted     TicketLogAction = "completed"
	LogActionForwarded     TicketLogAction = "forwarded"
	LogActionStatusChanged TicketLogAction = "status_changed"
	LogActionAdminOverride TicketLogAction = "admin_override"
)

// TicketLog is one row of the standalone audit trail. Rows are derived from
// ticket history events inside the same transaction and are append-only.
type TicketLog struct {
	ID               string
	TicketID         string
	Action           TicketLogAction
	Description      string
	PreviousStatus   *TicketStatus
	NewStatus        *TicketStatus
	PreviousAssignee *string
	NewAssignee      *string
	UpdatedBy        string
	Metadata         map[string]any
	CreatedAt        time.Time
}
