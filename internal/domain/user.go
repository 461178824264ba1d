package domain

import "time"

// UserRole enumerates operator roles.
type UserRole string

const (
	RoleAgent UserRole = "AGENT"
	RoleAdmin UserRole = "ADMIN"
)

// ValidRole reports whether r is a known role.
func ValidRole(r UserRole) bool {
	return r == RoleAgent || r == RoleAdmin
}

// User models a support agent or administrator.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanBeAssigned reports whether tickets may be assigned to this user.
func (u *User) CanBeAssigned() bool {
	return u.Active && (u.Role == RoleAgent || u.Role == RoleAdmin)
}
