package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageMeta(t *testing.T) {
	tests := []struct {
		name    string
		page    int
		limit   int
		total   int64
		pages   int
		hasNext bool
		hasPrev bool
	}{
		{"first of many", 1, 10, 25, 3, true, false},
		{"middle page", 2, 10, 25, 3, true, true},
		{"last page", 3, 10, 25, 3, false, true},
		{"exact division", 2, 5, 10, 2, false, true},
		{"empty result", 1, 10, 0, 0, false, false},
		{"defaults on zero inputs", 0, 0, 3, 3, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewPageMeta(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.pages, meta.Pages)
			assert.Equal(t, tt.total, meta.Total)
			assert.Equal(t, tt.hasNext, meta.HasNext)
			assert.Equal(t, tt.hasPrev, meta.HasPrev)
		})
	}
}

func TestValidateFlattensFieldErrors(t *testing.T) {
	payload := LoginRequest{}
	details := Validate(payload)
	require.NotEmpty(t, details)
	assert.Contains(t, details, "field Identifier failed on required")
	assert.Contains(t, details, "field Password failed on required")

	ok := LoginRequest{Identifier: "alice", Password: "Password1!"}
	assert.Nil(t, Validate(ok))
}
