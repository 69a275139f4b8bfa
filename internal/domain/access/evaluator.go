package access

// HasPermission reports whether role may exercise a permission whose
// allowed-role list is allowed. RoleSuperAdmin is granted everything whether
// or not it appears in allowed.
func HasPermission(role Role, allowed []Role) bool {
	if role == RoleSuperAdmin {
		return true
	}
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}
