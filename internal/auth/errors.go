// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import "errors"

var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when registering an email that is
	// already taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidToken is returned when a reset token is unknown or was
	// already consumed.
	ErrInvalidToken = errors.New("invalid reset token")

	// ErrAmbiguousMatch is returned when a predicate that must identify at
	// most one user matches several rows. It indicates a store consistency
	// violation, not a caller mistake.
	ErrAmbiguousMatch = errors.New("ambiguous match")
)
