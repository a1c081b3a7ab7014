// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package auth implements the session-backed authentication core.
//
// # Domain Types
//
// User is the single persisted aggregate: an email, an argon2id password
// digest, an optional active session token hash, and an optional pending
// password-reset token hash. Users are created through Service.Register;
// direct struct initialization bypasses validation.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - registration, login verification, session lifecycle
//   - PasswordResetService - one-time reset token flow
//
// Both services return the sentinel errors declared in errors.go; callers
// match them with errors.Is. Plaintext passwords and tokens never reach the
// repository layer: passwords are hashed with argon2id and opaque tokens are
// stored as SHA-256 hashes.
//
// # Identity Resolution
//
// IdentityResolver is the boundary an embedding request layer uses to turn a
// bearer credential into a User. The session-token strategy is the only one
// shipped; NewIdentityResolver selects a strategy by configured name.
package auth
