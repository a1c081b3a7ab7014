// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"

	"github.com/samber/oops"
)

// StrategySession is the session-token identity strategy name.
const StrategySession = "session"

// IdentityResolver turns a bearer credential extracted by the embedding
// request layer into the User it proves. Strategies are selected by
// configuration, not inheritance; ErrNotFound means the credential proves
// nothing.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, credential string) (*User, error)
}

// SessionIdentityResolver resolves identities from opaque session tokens.
type SessionIdentityResolver struct {
	service *Service
}

// NewSessionIdentityResolver creates a SessionIdentityResolver.
func NewSessionIdentityResolver(service *Service) (*SessionIdentityResolver, error) {
	if service == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("auth service is required")
	}
	return &SessionIdentityResolver{service: service}, nil
}

// ResolveIdentity returns the user holding the session token.
func (r *SessionIdentityResolver) ResolveIdentity(ctx context.Context, credential string) (*User, error) {
	return r.service.ResolveSession(ctx, credential)
}

// NewIdentityResolver selects an identity resolution strategy by its
// configured name. Unknown names are a configuration error.
func NewIdentityResolver(strategy string, service *Service) (IdentityResolver, error) {
	switch strategy {
	case StrategySession, "":
		return NewSessionIdentityResolver(service)
	default:
		return nil, oops.Code("AUTH_UNKNOWN_STRATEGY").
			With("strategy", strategy).
			Errorf("unknown identity strategy: %s", strategy)
	}
}

// Compile-time interface check.
var _ IdentityResolver = (*SessionIdentityResolver)(nil)
