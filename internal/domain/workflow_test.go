package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    TicketStatus
		to      TicketStatus
		allowed bool
	}{
		{"accept", TicketStatusPending, TicketStatusOpen, true},
		{"reject", TicketStatusPending, TicketStatusRejected, true},
		{"complete", TicketStatusOpen, TicketStatusResolved, true},
		{"forward keeps open", TicketStatusOpen, TicketStatusOpen, true},
		{"pending cannot resolve", TicketStatusPending, TicketStatusResolved, false},
		{"open cannot reject", TicketStatusOpen, TicketStatusRejected, false},
		{"resolved is terminal", TicketStatusResolved, TicketStatusOpen, false},
		{"rejected is terminal", TicketStatusRejected, TicketStatusOpen, false},
		{"closed is terminal", TicketStatusClosed, TicketStatusOpen, false},
		{"no staff path to closed", TicketStatusOpen, TicketStatusClosed, false},
		{"no staff path to in-progress", TicketStatusOpen, TicketStatusInProgress, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(TicketStatusResolved))
	assert.True(t, IsTerminal(TicketStatusRejected))
	assert.True(t, IsTerminal(TicketStatusClosed))
	assert.False(t, IsTerminal(TicketStatusPending))
	assert.False(t, IsTerminal(TicketStatusOpen))
	assert.False(t, IsTerminal(TicketStatusInProgress))
}
