// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account holder in the Money Tracker system.
type User struct {
	ID              uuid.UUID
	Email           string
	Name            string
	PasswordHash    string
	EmailVerifiedAt *time.Time
	// PendingEmail is an address the user asked to move to and has not confirmed yet.
	PendingEmail    *string
	TermsAcceptedAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewUser creates a new, not yet verified User.
func NewUser(email, name, passwordHash string, termsAcceptedAt time.Time) *User {
	now := time.Now().UTC()
	return &User{
		ID:              uuid.New(),
		Email:           email,
		Name:            name,
		PasswordHash:    passwordHash,
		TermsAcceptedAt: termsAcceptedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsEmailVerified returns true once the user has confirmed their email address.
func (u *User) IsEmailVerified() bool {
	return u.EmailVerifiedAt != nil
}

// MarkEmailVerified records the verification instant. Repeated calls keep the first one.
func (u *User) MarkEmailVerified(at time.Time) {
	if u.EmailVerifiedAt != nil {
		return
	}
	verifiedAt := at.UTC()
	u.EmailVerifiedAt = &verifiedAt
	u.UpdatedAt = verifiedAt
}

// ChangePassword replaces the password hash.
func (u *User) ChangePassword(passwordHash string, at time.Time) {
	u.PasswordHash = passwordHash
	u.UpdatedAt = at.UTC()
}

// RequestEmailChange parks email until a token sent to it is redeemed. A newer request
// replaces an older one.
func (u *User) RequestEmailChange(email string, at time.Time) {
	u.PendingEmail = &email
	u.UpdatedAt = at.UTC()
}

// HasPendingEmail reports whether email is the address awaiting confirmation.
func (u *User) HasPendingEmail(email string) bool {
	return u.PendingEmail != nil && *u.PendingEmail == email
}

// ConfirmEmailChange moves the account to the pending address, which counts as verified
// from at onwards. It is a no-op without a pending address.
func (u *User) ConfirmEmailChange(at time.Time) {
	if u.PendingEmail == nil {
		return
	}
	verifiedAt := at.UTC()
	u.Email = *u.PendingEmail
	u.PendingEmail = nil
	u.EmailVerifiedAt = &verifiedAt
	u.UpdatedAt = verifiedAt
}
