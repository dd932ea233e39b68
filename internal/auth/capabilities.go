package auth

import "github.com/spec-kit/helpdesk/internal/domain"

// Capability names one permitted action. Handlers never compare role strings
// directly; they consult this table through the middleware.
type Capability string

const (
	CapCreateTicket     Capability = "tickets:create"
	CapViewAllTickets   Capability = "tickets:view_all"
	CapWorkTickets      Capability = "tickets:work"
	CapAdminOverride    Capability = "tickets:admin_override"
	CapViewPerformance  Capability = "tickets:performance"
	CapManageUsers      Capability = "users:manage"
	CapViewDashboard    Capability = "dashboard:view"
	CapAdminDashboard   Capability = "dashboard:admin"
	CapViewNotification Capability = "notifications:view"
)

var roleCapabilities = map[domain.Role]map[Capability]struct{}{
	domain.RoleUser: capSet(
		CapCreateTicket, CapViewDashboard, CapViewNotification,
	),
	domain.RoleSupport: capSet(
		CapCreateTicket, CapViewDashboard, CapViewNotification,
	),
	domain.RoleITStaff: capSet(
		CapCreateTicket, CapViewDashboard, CapViewNotification,
		CapViewAllTickets, CapWorkTickets, CapViewPerformance,
	),
	domain.RoleAdmin: capSet(
		CapCreateTicket, CapViewDashboard, CapViewNotification,
		CapViewAllTickets, CapWorkTickets, CapViewPerformance,
		CapAdminOverride, CapManageUsers, CapAdminDashboard,
	),
}

func capSet(caps ...Capability) map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// RoleCan reports whether the role holds the capability.
func RoleCan(role domain.Role, c Capability) bool {
	_, ok := roleCapabilities[role][c]
	return ok
}

// SeesAllTickets is the visibility-scope predicate applied to queries:
// user and support accounts only see tickets they raised or benefit from.
func SeesAllTickets(role domain.Role) bool {
	return RoleCan(role, CapViewAllTickets)
}

// RolePermissionNames returns the human-readable permission set reported by
// the admin role-stats endpoint.
func RolePermissionNames(role domain.Role) []string {
	switch role {
	case domain.RoleAdmin:
		return []string{"Manage Users", "Manage Tickets", "System Settings", "View Reports", "Full Access"}
	case domain.RoleITStaff:
		return []string{"Manage All Tickets", "Accept/Reject Tickets", "Complete Tickets", "Forward Tickets", "System Maintenance"}
	default:
		return []string{"Create Tickets", "View Own Tickets", "Update Profile"}
	}
}
