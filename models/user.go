package models

import "time"

type UserRole string

const (
	RolePlayer     UserRole = "player"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "super_admin"
)

// IsAdminRole reports whether the role is one of the administrator variants,
// which see inactive and past tournaments in search results.
func IsAdminRole(role UserRole) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

type User struct {
	ID           string    `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
