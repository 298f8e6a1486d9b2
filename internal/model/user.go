package model

import "time"

// User represents an API account. Regular users can manage records,
// admins can additionally manage accounts.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether role is a known role name.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
