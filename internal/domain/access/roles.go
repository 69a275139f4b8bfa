package access

import "strings"

// Role identifies a user's privilege tier. Only the constants below are roles;
// any other value is denied every permission.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleMainAdmin  Role = "main_admin"
	RoleHRAdmin    Role = "hr_admin"
	RoleManager    Role = "manager"
	RoleEmployee   Role = "employee"
)

// DefaultRole is what a signed-in principal without a recognised role resolves to.
const DefaultRole = RoleEmployee

// AllRoles returns every role ordered from broadest to narrowest privilege.
func AllRoles() []Role {
	return []Role{
		RoleSuperAdmin,
		RoleMainAdmin,
		RoleHRAdmin,
		RoleManager,
		RoleEmployee,
	}
}

// Rank orders roles by privilege breadth, 0 being the broadest. It returns -1
// for values that are not roles.
func (r Role) Rank() int {
	switch r {
	case RoleSuperAdmin:
		return 0
	case RoleMainAdmin:
		return 1
	case RoleHRAdmin:
		return 2
	case RoleManager:
		return 3
	case RoleEmployee:
		return 4
	default:
		return -1
	}
}

func (r Role) Label() string {
	switch r {
	case RoleSuperAdmin:
		return "Super Admin"
	case RoleMainAdmin:
		return "Main Admin"
	case RoleHRAdmin:
		return "HR Admin"
	case RoleManager:
		return "Manager"
	case RoleEmployee:
		return "Employee"
	default:
		return string(r)
	}
}

func (r Role) Valid() bool {
	return r.Rank() >= 0
}

func (r Role) String() string {
	return string(r)
}

// ParseRole normalises raw input and reports whether it names a role.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", false
	}
	return role, true
}

// ResolveRole maps a stored or claimed role to a role, falling back to
// DefaultRole when the value is empty or unrecognised.
func ResolveRole(raw string) Role {
	if role, ok := ParseRole(raw); ok {
		return role
	}
	return DefaultRole
}
