package model

import "time"

// Role names stored in the `users.role` column and carried inside JWT claims.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a record of the `users` table. The password hash is
// never serialized; handlers build their own response shapes from the
// remaining fields.
//
// Accounts are soft-deleted by flipping Active to false. Rows are never
// removed so historical createdBy references stay resolvable.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the resolved acting user of a request. The auth middleware
// builds one from the bearer token and the users table; handlers receive
// it as a value instead of digging claims out of the request themselves.
type Identity struct {
	ID   string
	Role string
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
