package domain

// staffTransitions is the single transition table for the guarded staff
// workflow. Accept moves pending to open, reject moves pending to rejected,
// complete moves open to resolved, forward re-enters open (reassignment
// only). Everything else goes through the explicit admin override.
var staffTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusPending: {TicketStatusOpen, TicketStatusRejected},
	TicketStatusOpen:    {TicketStatusResolved, TicketStatusOpen},
}

// CanTransition reports whether the guarded workflow permits moving a ticket
// from one status to another.
func CanTransition(from, to TicketStatus) bool {
	for _, candidate := range staffTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no guarded transition leaves the status.
// closed is reachable only via the admin override; in-progress is a legacy
// value the override may still assign.
func IsTerminal(s TicketStatus) bool {
	return s == TicketStatusResolved || s == TicketStatusRejected || s == TicketStatusClosed
}
