package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{
			name:     "valid password",
			password: "Str0ng!pass",
			want:     nil,
		},
		{
			name:     "too short but otherwise fine",
			password: "Aa1!",
			want:     []string{"Password must be at least 8 characters long"},
		},
		{
			name:     "missing uppercase",
			password: "weakpass1!",
			want:     []string{"Password must contain at least one uppercase letter"},
		},
		{
			name:     "missing lowercase",
			password: "WEAKPASS1!",
			want:     []string{"Password must contain at least one lowercase letter"},
		},
		{
			name:     "missing digit",
			password: "Weakpass!",
			want:     []string{"Password must contain at least one number"},
		},
		{
			name:     "missing symbol",
			password: "Weakpass1",
			want:     []string{"Password must contain at least one special character"},
		},
		{
			name:     "empty fails every rule",
			password: "",
			want: []string{
				"Password must be at least 8 characters long",
				"Password must contain at least one uppercase letter",
				"Password must contain at least one lowercase letter",
				"Password must contain at least one number",
				"Password must contain at least one special character",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePassword(tt.password))
		})
	}
}

func TestValidatePasswordAcceptsEverySymbol(t *testing.T) {
	for _, symbol := range passwordSymbols {
		assert.Empty(t, ValidatePassword("Abcdef1"+string(symbol)), "symbol %q should satisfy the policy", symbol)
	}
}
