package users

import (
	"time"

	"staffhub/internal/domain/access"
)

type User struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      access.Role `json:"role"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Credentials is a user row including the password hash, used only for login.
type Credentials struct {
	User
	PasswordHash string
}

type ListResult struct {
	Users []User
	Total int
}

// RoleChange describes a completed role assignment.
type RoleChange struct {
	UserID string      `json:"userId"`
	Before access.Role `json:"before"`
	After  access.Role `json:"after"`
}
