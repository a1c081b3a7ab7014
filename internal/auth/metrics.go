// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import "github.com/prometheus/client_golang/prometheus"

// Status label values for authentication metrics.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusError   = "error"
)

// LoginAttempts counts login verifications by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authgate_login_attempts_total",
		Help: "Total number of login verification attempts",
	},
	[]string{"status"},
)

// SessionsCreated counts issued sessions.
var SessionsCreated = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "authgate_sessions_created_total",
		Help: "Total number of sessions issued",
	},
)

// SessionsDestroyed counts explicit session destructions.
var SessionsDestroyed = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "authgate_sessions_destroyed_total",
		Help: "Total number of sessions explicitly destroyed",
	},
)

// ResetRequests counts password reset requests by outcome.
var ResetRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authgate_reset_requests_total",
		Help: "Total number of password reset requests",
	},
	[]string{"status"},
)

// ResetCompletions counts consumed reset tokens by outcome.
var ResetCompletions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authgate_reset_completions_total",
		Help: "Total number of password reset completions",
	},
	[]string{"status"},
)

// RegisterMetrics registers auth package metrics with the given Prometheus
// registry. The embedding application calls this at startup; exposition is
// its concern. Panics if registration fails (prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(SessionsCreated)
	reg.MustRegister(SessionsDestroyed)
	reg.MustRegister(ResetRequests)
	reg.MustRegister(ResetCompletions)
}
