// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/auth"
)

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	auth.RegisterMetrics(reg)

	t.Run("double registration panics", func(t *testing.T) {
		assert.Panics(t, func() { auth.RegisterMetrics(reg) })
	})
}

// Metrics are package-level collectors shared across the test binary, so
// outcomes are asserted as deltas.
func TestLoginMetrics(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Register(ctx, "metrics@example.com", "secret")
	require.NoError(t, err)

	success := testutil.ToFloat64(auth.LoginAttempts.WithLabelValues(auth.StatusSuccess))
	failure := testutil.ToFloat64(auth.LoginAttempts.WithLabelValues(auth.StatusFailure))

	ok, err := svc.VerifyLogin(ctx, "metrics@example.com", "secret")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.VerifyLogin(ctx, "metrics@example.com", "wrong")
	require.NoError(t, err)
	require.False(t, ok)

	assert.Equal(t, success+1, testutil.ToFloat64(auth.LoginAttempts.WithLabelValues(auth.StatusSuccess)))
	assert.Equal(t, failure+1, testutil.ToFloat64(auth.LoginAttempts.WithLabelValues(auth.StatusFailure)))
}

func TestSessionMetrics(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	user, err := svc.Register(ctx, "sessions@example.com", "secret")
	require.NoError(t, err)

	created := testutil.ToFloat64(auth.SessionsCreated)
	destroyed := testutil.ToFloat64(auth.SessionsDestroyed)

	_, err = svc.CreateSession(ctx, "sessions@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.DestroySession(ctx, user.ID))

	assert.Equal(t, created+1, testutil.ToFloat64(auth.SessionsCreated))
	assert.Equal(t, destroyed+1, testutil.ToFloat64(auth.SessionsDestroyed))
}

func TestResetMetrics(t *testing.T) {
	ctx := context.Background()
	svc, reset, _ := newResetFixture(t)

	_, err := svc.Register(ctx, "resets@example.com", "old")
	require.NoError(t, err)

	requested := testutil.ToFloat64(auth.ResetRequests.WithLabelValues(auth.StatusSuccess))
	completed := testutil.ToFloat64(auth.ResetCompletions.WithLabelValues(auth.StatusSuccess))
	rejected := testutil.ToFloat64(auth.ResetCompletions.WithLabelValues(auth.StatusFailure))

	token, err := reset.RequestReset(ctx, "resets@example.com")
	require.NoError(t, err)
	require.NoError(t, reset.ResetPassword(ctx, token, "new"))
	require.ErrorIs(t, reset.ResetPassword(ctx, token, "newer"), auth.ErrInvalidToken)

	assert.Equal(t, requested+1, testutil.ToFloat64(auth.ResetRequests.WithLabelValues(auth.StatusSuccess)))
	assert.Equal(t, completed+1, testutil.ToFloat64(auth.ResetCompletions.WithLabelValues(auth.StatusSuccess)))
	assert.Equal(t, rejected+1, testutil.ToFloat64(auth.ResetCompletions.WithLabelValues(auth.StatusFailure)))
}
