// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MaxEmailLength bounds stored email addresses.
const MaxEmailLength = 254

// emailRegex accepts a pragmatic subset of RFC 5322 addr-spec: one @, a
// non-empty local part, and a dotted domain.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User represents one registered principal.
//
// SessionID and ResetToken hold the SHA-256 hash of the issued opaque token,
// never the plaintext; nil means no active session / no pending reset. At
// most one of each exists per user, and each value is globally unique across
// the store.
type User struct {
	ID           ulid.ULID
	Email        string
	PasswordHash string
	SessionID    *string
	ResetToken   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a validated User with a fresh ULID and no session or
// pending reset. Email is normalized to lower case; email is immutable after
// creation.
func NewUser(email, passwordHash string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_EMPTY_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now()
	return &User{
		ID:           ulid.Make(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// HasSession reports whether the user currently holds an active session.
func (u *User) HasSession() bool {
	return u.SessionID != nil
}

// NormalizeEmail lowercases and trims an email address. Emails are compared
// case-insensitively throughout the store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail validates an email address against the store policy.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return oops.Code("AUTH_INVALID_EMAIL").
			With("max", MaxEmailLength).
			Errorf("email must be at most %d characters", MaxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email address is malformed")
	}
	return nil
}

// UserRepository manages user persistence.
//
// All mutations are atomic with respect to a single user row: an
// implementation backed by a shared store must issue single-statement
// updates (or an equivalent compare-and-swap) so that concurrent session
// creation and password resets cannot lose updates.
type UserRepository interface {
	// Create stores a new user. Returns ErrDuplicateEmail if the email is
	// already registered.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	// Returns ErrNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetBySessionID retrieves the user holding the given session token
	// hash. Returns ErrNotFound if no user holds it, ErrAmbiguousMatch if
	// more than one does.
	GetBySessionID(ctx context.Context, sessionID string) (*User, error)

	// GetByResetToken retrieves the user with the given pending reset token
	// hash. Returns ErrNotFound if no user holds it, ErrAmbiguousMatch if
	// more than one does.
	GetByResetToken(ctx context.Context, resetToken string) (*User, error)

	// UpdateSession sets (or clears, when nil) the session token hash for a
	// user. Returns ErrNotFound if the user id is absent. Clearing an
	// already-absent session is not an error.
	UpdateSession(ctx context.Context, id ulid.ULID, sessionID *string) error

	// UpdateResetToken sets (or clears, when nil) the pending reset token
	// hash for a user. Returns ErrNotFound if the user id is absent.
	UpdateResetToken(ctx context.Context, id ulid.ULID, resetToken *string) error

	// UpdatePassword replaces the password hash for a user.
	// Returns ErrNotFound if the user id is absent.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// ConsumeResetToken atomically replaces the password hash, clears the
	// reset token, and clears any active session for the user holding the
	// given reset token hash. Returns the updated user, or ErrInvalidToken
	// if no user holds the token.
	ConsumeResetToken(ctx context.Context, resetToken, passwordHash string) (*User, error)
}
