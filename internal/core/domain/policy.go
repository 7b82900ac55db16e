package domain

// AllowsDelta is the sign gate on stock movements: operators may only
// restock, admins may also post negative adjustments.
func AllowsDelta(role Role, delta int) bool {
	if delta >= 0 {
		return true
	}
	return role == RoleAdmin
}
