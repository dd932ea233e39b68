package domain

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTicketNumber(t *testing.T) {
	ticket := &Ticket{
		ID:        "3f2504e0-4f89-41d3-9a0c-0305e82c3301",
		CreatedAt: time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "TKT-202603-2C3301", ticket.Number())
}

func TestTicketNumberStableAcrossCalls(t *testing.T) {
	ticket := &Ticket{
		ID:        "aabbccdd-eeff-0011-2233-445566778899",
		CreatedAt: time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
	}
	first := ticket.Number()
	assert.Equal(t, first, ticket.Number())
	assert.True(t, strings.HasPrefix(first, "TKT-202512-"))
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name      string
		complaint string
		want      string
	}{
		{"short passes through", "Printer jammed", "Printer jammed"},
		{"whitespace trimmed", "  Printer jammed  ", "Printer jammed"},
		{
			"exactly fifty kept",
			strings.Repeat("a", 50),
			strings.Repeat("a", 50),
		},
		{
			"long complaint truncated with ellipsis",
			strings.Repeat("b", 80),
			strings.Repeat("b", 47) + "...",
		},
		{
			"fifty multi-byte characters kept whole",
			strings.Repeat("ü", 50),
			strings.Repeat("ü", 50),
		},
		{
			"multi-byte truncation lands on a rune boundary",
			strings.Repeat("ü", 80),
			strings.Repeat("ü", 47) + "...",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTitle(tt.complaint)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, utf8.RuneCountInString(got), 50)
		})
	}
}
