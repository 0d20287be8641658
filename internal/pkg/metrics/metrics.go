// Package metrics defines the custom Prometheus metrics for the catalog auth
// service. It is the single source of truth for metric names, labels, and
// help strings.
//
// Call Register() once at startup (before the HTTP server starts) with the
// registry that backs the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "catalog_auth"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "validation_error" or "error"
var LoginsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "duplicate", "validation_error" or "error"
var RegistrationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts bearer token checks. The cause of a failure
// is recorded here only; clients always see a generic 401.
// Label:
//   - result: "valid", "expired", "invalid_signature" or "malformed"
var TokenVerificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, by result.",
	},
	[]string{"result"},
)

// PasswordHashDuration measures how long a single bcrypt hash takes.
var PasswordHashDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of password hashing.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1},
	},
)

// ── Administration metrics ────────────────────────────────────────────────────

// AdminActionsTotal counts user administration operations that succeeded.
// Label:
//   - action: "list", "get", "update", "delete"
var AdminActionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_actions_total",
		Help:      "Total number of successful user administration actions.",
	},
	[]string{"action"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// CategoryCacheTotal counts category cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var CategoryCacheTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "category_cache_total",
		Help:      "Total number of category cache lookups, labelled by result (hit/miss/error).",
	},
	[]string{"result"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// PasswordChangesTotal counts self-service password changes.
// Label:
//   - result: "success", "invalid_credentials", "validation_error" or "error"
var PasswordChangesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_changes_total",
		Help:      "Total number of password change attempts, labelled by result.",
	},
	[]string{"result"},
)

// TokenRefreshesTotal counts token refreshes.
// Label:
//   - result: "success", "unknown_user" or "error"
var TokenRefreshesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of token refresh attempts, labelled by result.",
	},
	[]string{"result"},
)

// Register adds every metric in this package to r. It panics on duplicate
// registration, like prometheus.MustRegister.
func Register(r prometheus.Registerer) {
	r.MustRegister(
		LoginsTotal,
		RegistrationsTotal,
		TokenVerificationsTotal,
		PasswordHashDuration,
		AdminActionsTotal,
		CategoryCacheTotal,
		PasswordChangesTotal,
		TokenRefreshesTotal,
	)
}
