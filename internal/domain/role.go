package domain

import "fmt"

// Role is a member's role within one organization.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
	RoleIntern   Role = "intern"
)

// Roles lists every role from most to least privileged.
var Roles = []Role{RoleOwner, RoleAdmin, RoleManager, RoleEmployee, RoleIntern}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleEmployee, RoleIntern:
		return true
	}
	return false
}

// IsPrivileged reports whether the role can review other members' time.
func (r Role) IsPrivileged() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleManager
}

// ParseRole converts a stored value into a role.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}
