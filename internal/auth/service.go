// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service provides registration, login verification, and the session
// lifecycle. It is safe for concurrent use; row atomicity is delegated to
// the UserRepository.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(users UserRepository, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithLogger(users, hasher, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("logger is required")
	}
	return &Service{users: users, hasher: hasher, logger: logger}, nil
}

// dummyPasswordHash is verified against when a user doesn't exist, so the
// response time of VerifyLogin does not reveal whether the email is
// registered. It is not a real credential and matches no password.
//
//nolint:gosec // G101: intentionally fake digest for timing consistency, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register creates a new user from an email and plaintext password.
// Returns ErrDuplicateEmail if the email is already registered.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(email, digest)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, err
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID.String())
	return user, nil
}

// VerifyLogin reports whether the email/password pair identifies a
// registered user. Unknown email and wrong password are deliberately
// indistinguishable: both return (false, nil), and password verification
// runs either way so response timing stays flat. A non-nil error means the
// store failed, never that the credentials were wrong.
func (s *Service) VerifyLogin(ctx context.Context, email, password string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))

	targetHash := dummyPasswordHash
	userExists := false
	if err == nil {
		targetHash = user.PasswordHash
		userExists = true
	} else if !errors.Is(err, ErrNotFound) {
		LoginAttempts.WithLabelValues(StatusError).Inc()
		return false, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	valid := s.hasher.Verify(password, targetHash)
	if !userExists || !valid {
		LoginAttempts.WithLabelValues(StatusFailure).Inc()
		return false, nil
	}

	LoginAttempts.WithLabelValues(StatusSuccess).Inc()
	return true, nil
}

// CreateSession issues a new opaque session token for the user registered
// under email and returns the plaintext token. Any prior session is
// overwritten, invalidating its token immediately: there is at most one
// active session per user. Returns ErrNotFound for an unknown email.
func (s *Service) CreateSession(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", err
		}
		return "", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	token, hash, err := GenerateToken()
	if err != nil {
		return "", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	if err := s.users.UpdateSession(ctx, user.ID, &hash); err != nil {
		return "", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "persist session").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	SessionsCreated.Inc()
	s.logger.InfoContext(ctx, "session created", "user_id", user.ID.String())
	return token, nil
}

// ResolveSession returns the user holding the given session token.
// Absent, already-invalidated, and malformed tokens all yield ErrNotFound;
// malformed input is never reported distinctly.
func (s *Service) ResolveSession(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	user, err := s.users.GetBySessionID(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, oops.Code("AUTH_SESSION_RESOLVE_FAILED").
			With("operation", "get user by session").
			Wrap(err)
	}
	return user, nil
}

// DestroySession clears the active session for the given user id.
// Idempotent: destroying when no session is active is a no-op. Returns
// ErrNotFound only if the user row itself is absent.
func (s *Service) DestroySession(ctx context.Context, userID ulid.ULID) error {
	if err := s.users.UpdateSession(ctx, userID, nil); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return oops.Code("AUTH_SESSION_DESTROY_FAILED").
			With("operation", "clear session").
			With("user_id", userID.String()).
			Wrap(err)
	}

	SessionsDestroyed.Inc()
	s.logger.InfoContext(ctx, "session destroyed", "user_id", userID.String())
	return nil
}
