package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
	TicketStatusRejected   TicketStatus = "rejected"
)

// ValidStatus reports whether s is a declared status value.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusPending, TicketStatusOpen, TicketStatusInProgress,
		TicketStatusResolved, TicketStatusClosed, TicketStatusRejected:
		return true
	}
	return false
}

// TicketType distinguishes incident reports from replacement requests.
type TicketType string

const (
	TicketTypeIncidental  TicketType = "incidental"
	TicketTypeReplacement TicketType = "replacement"
)

// ValidTicketType reports whether t is a declared type value.
func ValidTicketType(t TicketType) bool {
	return t == TicketTypeIncidental || t == TicketTypeReplacement
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// HistoryEntry is one embedded record of a status transition.
type HistoryEntry struct {
	ID        string
	TicketID  string
	Status    TicketStatus
	Note      string
	UpdatedBy string
	CreatedAt time.Time
}

// Ticket is the central aggregate: a reported issue or replacement request.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Type        TicketType
	Status      TicketStatus
	Priority    TicketPriority
	RoomNo      string
	RaisedBy    string
	RaisedFor   *string
	AssignedTo  *string
	Resolution  *string
	ResolvedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// History is loaded on detail reads, ordered oldest-first.
	History []HistoryEntry
}

// Number derives the human-facing ticket number from the creation month and
// the trailing hex of the identifier. It is never stored.
func (t *Ticket) Number() string {
	hex := strings.ToUpper(strings.ReplaceAll(t.ID, "-", ""))
	if len(hex) > 6 {
		hex = hex[len(hex)-6:]
	}
	return fmt.Sprintf("TKT-%04d%02d-%s", t.CreatedAt.Year(), int(t.CreatedAt.Month()), hex)
}

// DeriveTitle produces the ticket title from the leading characters of the
// complaint text: at most 50 characters, ellipsized when truncated. Lengths
// are measured in runes so multi-byte text is never cut mid-character.
func DeriveTitle(complaint string) string {
	complaint = strings.TrimSpace(complaint)
	runes := []rune(complaint)
	if len(runes) <= 50 {
		return complaint
	}
	return string(runes[:47]) + "..."
}

// TicketStats aggregates status and type counts for one visibility scope.
type TicketStats struct {
	Total       int64 `json:"total"`
	Open        int64 `json:"open"`
	Resolved    int64 `json:"resolved"`
	Pending     int64 `json:"pending"`
	Rejected    int64 `json:"rejected"`
	Incidental  int64 `json:"incidental"`
	Replacement int64 `json:"replacement"`
}
