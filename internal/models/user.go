package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account. Users are provisioned lazily: the first
// successful login with a verified email creates the account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). It is the natural key:
	// logins, list ownership and sharing all resolve users by email.
	Email string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser creates a user with a fresh ID and the given email.
func NewUser(email string) *User {
	return &User{
		ID:        uuid.New().String(),
		Email:     email,
		CreatedAt: time.Now().Unix(),
	}
}
