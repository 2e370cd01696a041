package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role determines which areas of the platform an account can access.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Challenge is an open login attempt: the TOTP secret issued for the
// account and the moment it stops being accepted. An account has at
// most one open challenge; requesting a new code replaces it.
type Challenge struct {
	Secret    string
	ExpiresAt time.Time
}

// Expired reports whether the challenge is past its expiry at t.
func (c Challenge) Expired(t time.Time) bool {
	return t.After(c.ExpiresAt)
}

// Account is a registered player or manager.
type Account struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Role      Role
	Challenge *Challenge
}

// User is the projection of an account exposed to handlers and
// stored in the session after a successful login.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// User returns the session projection of the account.
func (a Account) User() User {
	return User{
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
		Role:  a.Role,
	}
}

// IsAdmin reports whether the user may access the manager area.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
