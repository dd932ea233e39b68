package domain

import "time"

// Role enumerates the account roles recognized by the system.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleSupport Role = "support"
	RoleITStaff Role = "it_staff"
	RoleUser    Role = "user"
)

// ValidRole reports whether r is one of the declared roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleSupport, RoleITStaff, RoleUser:
		return true
	}
	return false
}

// IsStaff reports whether the role may work tickets (accept/reject/complete/forward).
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleITStaff
}

// User is the identity record for every account, staff and end-user alike.
type User struct {
	ID           string
	Username     string
	Email        string
	DisplayName  string
	PasswordHash string
	Role         Role
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
