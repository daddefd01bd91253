package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account on the review API.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserRole enumerates the roles the review API distinguishes.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"    // can trigger pipeline runs
	RoleReviewer UserRole = "reviewer" // read-only access to opportunities and events
)

// IsAdmin reports whether the user may trigger pipeline runs.
func (u *User) IsAdmin() bool {
	return u.Role == string(RoleAdmin)
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// CreateUserRequest is the payload for registering a reviewer account.
type CreateUserRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=8"`
	Role     UserRole `json:"role"`
}

// LoginResponse carries a signed token plus the authenticated user.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
