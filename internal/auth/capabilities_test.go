package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func TestRoleCan(t *testing.T) {
	tests := []struct {
		name       string
		role       domain.Role
		capability Capability
		allowed    bool
	}{
		{"user creates tickets", domain.RoleUser, CapCreateTicket, true},
		{"user cannot view all", domain.RoleUser, CapViewAllTickets, false},
		{"user cannot work tickets", domain.RoleUser, CapWorkTickets, false},
		{"support cannot work tickets", domain.RoleSupport, CapWorkTickets, false},
		{"it_staff works tickets", domain.RoleITStaff, CapWorkTickets, true},
		{"it_staff sees performance", domain.RoleITStaff, CapViewPerformance, true},
		{"it_staff cannot override", domain.RoleITStaff, CapAdminOverride, false},
		{"it_staff cannot manage users", domain.RoleITStaff, CapManageUsers, false},
		{"admin overrides", domain.RoleAdmin, CapAdminOverride, true},
		{"admin manages users", domain.RoleAdmin, CapManageUsers, true},
		{"admin sees admin dashboard", domain.RoleAdmin, CapAdminDashboard, true},
		{"unknown role denied", domain.Role("ghost"), CapCreateTicket, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, RoleCan(tt.role, tt.capability))
		})
	}
}

func TestSeesAllTickets(t *testing.T) {
	assert.False(t, SeesAllTickets(domain.RoleUser))
	assert.False(t, SeesAllTickets(domain.RoleSupport))
	assert.True(t, SeesAllTickets(domain.RoleITStaff))
	assert.True(t, SeesAllTickets(domain.RoleAdmin))
}

func TestRolePermissionNames(t *testing.T) {
	assert.Contains(t, RolePermissionNames(domain.RoleAdmin), "Full Access")
	assert.Contains(t, RolePermissionNames(domain.RoleITStaff), "Forward Tickets")
	assert.Contains(t, RolePermissionNames(domain.RoleUser), "Create Tickets")
	assert.Contains(t, RolePermissionNames(domain.RoleSupport), "View Own Tickets")
}
