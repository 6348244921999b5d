package types

import (
	"fmt"
	"time"
)

// Role is the authorization level of a user account.
type Role string

const (
	// RoleUser is the default role assigned on self-service signup.
	RoleUser Role = "user"

	// RoleAdmin grants access to account-management operations.
	RoleAdmin Role = "admin"
)

// ParseRole validates an external role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Email is the unique address the user logs in with.
	Email string `json:"email" db:"email"`

	// FullName is the user's display name. It may be empty.
	FullName string `json:"full_name" db:"full_name"`

	// Role indicates the user's authorization level within the
	// system ("admin" or "user").
	Role Role `json:"role" db:"role"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
