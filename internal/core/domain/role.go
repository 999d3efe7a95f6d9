package domain

// Role is the closed set of roles a user may hold.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDev          Role = "dev"
	RoleSimpleMortal Role = "simple mortal"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDev, RoleSimpleMortal:
		return true
	default:
		return false
	}
}

// ParseRole converts s into a Role, reporting whether it is acceptable.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsValid()
}

// Roles returns every known role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleDev, RoleSimpleMortal}
}
