// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// PasswordResetService handles the one-time password reset token flow.
type PasswordResetService struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
}

// NewPasswordResetService creates a new PasswordResetService.
func NewPasswordResetService(users UserRepository, hasher PasswordHasher) (*PasswordResetService, error) {
	return NewPasswordResetServiceWithLogger(users, hasher, slog.Default())
}

// NewPasswordResetServiceWithLogger creates a new PasswordResetService with
// an explicit logger.
func NewPasswordResetServiceWithLogger(users UserRepository, hasher PasswordHasher, logger *slog.Logger) (*PasswordResetService, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("logger is required")
	}
	return &PasswordResetService{users: users, hasher: hasher, logger: logger}, nil
}

// RequestReset issues a fresh reset token for the user registered under
// email and returns the plaintext token for delivery. Any prior pending
// token is overwritten. Returns ErrNotFound for an unknown email; how much
// of that distinction reaches an external caller is the embedding layer's
// decision, not this service's.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			ResetRequests.WithLabelValues(StatusFailure).Inc()
			return "", err
		}
		ResetRequests.WithLabelValues(StatusError).Inc()
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	token, hash, err := GenerateToken()
	if err != nil {
		ResetRequests.WithLabelValues(StatusError).Inc()
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "generate reset token").
			Wrap(err)
	}

	if err := s.users.UpdateResetToken(ctx, user.ID, &hash); err != nil {
		ResetRequests.WithLabelValues(StatusError).Inc()
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "persist reset token").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	ResetRequests.WithLabelValues(StatusSuccess).Inc()
	s.logger.InfoContext(ctx, "password reset requested", "user_id", user.ID.String())
	return token, nil
}

// ResetPassword consumes a reset token and replaces the user's password.
// The token is single-use: consumption clears it atomically together with
// any active session (a password change invalidates existing sessions).
// Returns ErrInvalidToken if no user holds the token, including tokens
// already consumed; the pending token survives every failure path.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidToken
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		ResetCompletions.WithLabelValues(StatusError).Inc()
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := s.users.ConsumeResetToken(ctx, HashToken(token), digest)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			ResetCompletions.WithLabelValues(StatusFailure).Inc()
			return err
		}
		ResetCompletions.WithLabelValues(StatusError).Inc()
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "consume reset token").
			Wrap(err)
	}

	ResetCompletions.WithLabelValues(StatusSuccess).Inc()
	s.logger.InfoContext(ctx, "password reset completed", "user_id", user.ID.String())
	return nil
}
