package domain

// Role is the viewpoint under which workflow operations and projections are
// scoped. It comes from the authenticated session principal, never from a
// client-supplied field.
type Role string

const (
	RoleStudent    Role = "student"
	RoleEmployer   Role = "employer"
	RoleUniversity Role = "university"
)

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleEmployer || r == RoleUniversity
}
