// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted, self-describing digest of the password.
	Hash(password string) (string, error)

	// Verify reports whether the password matches the digest. A malformed
	// digest verifies as false; digest format problems are never surfaced
	// to the caller.
	Verify(password, digest string) bool
}

// Argon2idHasher implements PasswordHasher using argon2id. Every Hash call
// draws a fresh random salt and embeds it in the PHC-format digest.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id digest of the password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// PHC string format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

// Verify recomputes the digest using the embedded salt and parameters and
// compares in constant time. Any malformed digest returns false.
func (h *Argon2idHasher) Verify(password, digest string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	// Reject parameter values that would truncate or overflow in the
	// argon2.IDKey conversion.
	if threads == 0 || threads > 255 {
		return false
	}
	keyLen := len(expected)
	if keyLen <= 0 || keyLen > 1<<30 {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(keyLen))

	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// PoolHasher wraps a PasswordHasher with a concurrency bound so the
// deliberately slow hash never saturates a latency-sensitive server.
// Verify and Hash block while the pool is full.
type PoolHasher struct {
	inner PasswordHasher
	slots chan struct{}
}

// NewPoolHasher creates a PoolHasher allowing at most workers concurrent
// hashing operations. A non-positive workers defaults to 1.
func NewPoolHasher(inner PasswordHasher, workers int) *PoolHasher {
	if workers < 1 {
		workers = 1
	}
	return &PoolHasher{
		inner: inner,
		slots: make(chan struct{}, workers),
	}
}

// Hash acquires a slot and delegates to the wrapped hasher.
func (p *PoolHasher) Hash(password string) (string, error) {
	p.slots <- struct{}{}
	defer func() { <-p.slots }()
	return p.inner.Hash(password)
}

// Verify acquires a slot and delegates to the wrapped hasher.
func (p *PoolHasher) Verify(password, digest string) bool {
	p.slots <- struct{}{}
	defer func() { <-p.slots }()
	return p.inner.Verify(password, digest)
}
