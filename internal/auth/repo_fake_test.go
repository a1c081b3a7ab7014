// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth_test

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/authgate/authgate/internal/auth"
)

// memRepo is an in-memory auth.UserRepository for service tests. It mirrors
// the store contract, including the uniqueness and atomicity semantics.
type memRepo struct {
	mu    sync.Mutex
	users map[ulid.ULID]*auth.User

	// failWith, when set, makes every operation fail with this error.
	failWith error
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[ulid.ULID]*auth.User)}
}

func cloneUser(u *auth.User) *auth.User {
	c := *u
	if u.SessionID != nil {
		s := *u.SessionID
		c.SessionID = &s
	}
	if u.ResetToken != nil {
		s := *u.ResetToken
		c.ResetToken = &s
	}
	return &c
}

func (m *memRepo) Create(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return auth.ErrDuplicateEmail
		}
	}
	m.users[user.ID] = cloneUser(user)
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, u := range m.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memRepo) GetBySessionID(_ context.Context, sessionID string) (*auth.User, error) {
	return m.getByToken(func(u *auth.User) *string { return u.SessionID }, sessionID)
}

func (m *memRepo) GetByResetToken(_ context.Context, resetToken string) (*auth.User, error) {
	return m.getByToken(func(u *auth.User) *string { return u.ResetToken }, resetToken)
}

func (m *memRepo) getByToken(field func(*auth.User) *string, value string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var found *auth.User
	for _, u := range m.users {
		if v := field(u); v != nil && *v == value {
			if found != nil {
				return nil, auth.ErrAmbiguousMatch
			}
			found = u
		}
	}
	if found == nil {
		return nil, auth.ErrNotFound
	}
	return cloneUser(found), nil
}

func (m *memRepo) UpdateSession(_ context.Context, id ulid.ULID, sessionID *string) error {
	return m.update(id, func(u *auth.User) { u.SessionID = sessionID })
}

func (m *memRepo) UpdateResetToken(_ context.Context, id ulid.ULID, resetToken *string) error {
	return m.update(id, func(u *auth.User) { u.ResetToken = resetToken })
}

func (m *memRepo) UpdatePassword(_ context.Context, id ulid.ULID, passwordHash string) error {
	return m.update(id, func(u *auth.User) { u.PasswordHash = passwordHash })
}

func (m *memRepo) update(id ulid.ULID, apply func(*auth.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	u, ok := m.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	apply(u)
	return nil
}

func (m *memRepo) ConsumeResetToken(_ context.Context, resetToken, passwordHash string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, u := range m.users {
		if u.ResetToken != nil && *u.ResetToken == resetToken {
			u.PasswordHash = passwordHash
			u.ResetToken = nil
			u.SessionID = nil
			return cloneUser(u), nil
		}
	}
	return nil, auth.ErrInvalidToken
}

// Compile-time interface check.
var _ auth.UserRepository = (*memRepo)(nil)
