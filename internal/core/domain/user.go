package domain

// Role values issued by the monitoring API.
const (
	RoleAdmin      = "ADMIN"
	RoleSupervisor = "SUPERVISOR"
	RoleUser       = "USER"
)

// User models the authenticated operator as reported by GET /auth/profile.
// A User is never patched in place; the session holds a fresh copy per update.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether u carries the privileged role. A nil user is not an admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
