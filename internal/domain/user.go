// Package domain contains the core business entities for vidfeed.
// These are plain Go structs representing users, their posts and the
// upload grants issued to them.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered user in the system.
type User struct {
	// ID is the unique identifier for the user.
	ID uuid.UUID `json:"id"`

	// Username is the unique username for login and display.
	// Constraints: 3-255 characters.
	Username string `json:"username"`

	// Email is the unique email address for the user.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This should never be exposed in API responses.
	PasswordHash string `json:"-"`

	// IsActive indicates whether the user account is active.
	// Inactive users cannot authenticate or upload.
	IsActive bool `json:"is_active"`

	// AcceptedTermsAt records when the user accepted the terms of use.
	AcceptedTermsAt time.Time `json:"accepted_terms_at"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new active User. Registration implies accepting the terms.
func NewUser(username, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:              uuid.New(),
		Username:        username,
		Email:           email,
		PasswordHash:    passwordHash,
		IsActive:        true,
		AcceptedTermsAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// CanAuthenticate returns true if the user is allowed to authenticate.
func (u *User) CanAuthenticate() bool {
	return u.IsActive
}

// RedactEmail hides the domain part of an address for logging,
// e.g. "john@example.com" becomes "john@***".
func RedactEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return "***"
	}
	return email[:at+1] + "***"
}
