// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/authgate/authgate/internal/auth"
)

// countingHasher records the peak number of concurrent calls.
type countingHasher struct {
	current atomic.Int32
	peak    atomic.Int32
	gate    chan struct{}
}

func (c *countingHasher) enter() {
	n := c.current.Add(1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	<-c.gate
	c.current.Add(-1)
}

func (c *countingHasher) Hash(string) (string, error) {
	c.enter()
	return "$argon2id$fake", nil
}

func (c *countingHasher) Verify(string, string) bool {
	c.enter()
	return true
}

func TestPoolHasher_BoundsConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	inner := &countingHasher{gate: make(chan struct{})}
	pool := auth.NewPoolHasher(inner, 2)

	const calls = 8
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = pool.Hash("pw")
		}()
	}

	// Release all hashers and wait for workers to drain.
	close(inner.gate)
	wg.Wait()

	assert.LessOrEqual(t, inner.peak.Load(), int32(2), "pool admitted more than 2 concurrent hashes")
}

func TestPoolHasher_Delegates(t *testing.T) {
	hasher := auth.NewPoolHasher(auth.NewArgon2idHasher(), 1)

	digest, err := hasher.Hash("password")
	require.NoError(t, err)
	assert.True(t, hasher.Verify("password", digest))
	assert.False(t, hasher.Verify("other", digest))
}

func TestPoolHasher_NonPositiveWorkers(t *testing.T) {
	hasher := auth.NewPoolHasher(auth.NewArgon2idHasher(), 0)

	digest, err := hasher.Hash("password")
	require.NoError(t, err)
	assert.True(t, hasher.Verify("password", digest))
}
