// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// TokenBytes is the entropy of issued session and reset tokens.
// 32 bytes = 64 hex chars, well above the 128-bit minimum.
const TokenBytes = 32

// GenerateToken creates a secure random opaque token and its hash.
// Returns (plaintext_token, sha256_hash, error). The plaintext goes to the
// caller; only the hash is ever persisted.
func GenerateToken() (token, hash string, err error) {
	buf := make([]byte, TokenBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}

	token = hex.EncodeToString(buf)
	hash = HashToken(token)

	return token, hash, nil
}

// HashToken computes the SHA-256 hash of an opaque token, hex encoded.
// Lookups and storage always go through this hash so a leaked store never
// yields usable bearer tokens.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
