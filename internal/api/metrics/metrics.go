// Package metrics defines and registers the custom Prometheus metrics of the
// accounts API. HTTP request metrics come from echoprometheus; this package
// only holds the domain counters.
//
// Metrics are registered with the default registry at package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// Result label values shared by the counters below.
const (
	ResultApplied  = "applied"
	ResultRejected = "rejected"
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "created", "conflict" or "invalid"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// ── Team metrics ──────────────────────────────────────────────────────────────

// TeamsCreatedTotal counts teams created.
var TeamsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "teams_created_total",
		Help:      "Total number of teams created.",
	},
)

// AdminChangesTotal counts grant and revoke requests.
// Labels:
//   - action: "grant" or "revoke"
//   - result: "applied" or "rejected" (a warning was returned)
var AdminChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_changes_total",
		Help:      "Total number of admin grant/revoke requests, by action and result.",
	},
	[]string{"action", "result"},
)

// MembershipRemovalsTotal counts confirmed leave and kick requests.
// Labels:
//   - kind: "leave" or "kick"
//   - result: "applied" or "rejected"
var MembershipRemovalsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "membership_removals_total",
		Help:      "Total number of confirmed leave/kick requests, by kind and result.",
	},
	[]string{"kind", "result"},
)

// ActionResult maps a rejected flag to the result label.
func ActionResult(rejected bool) string {
	if rejected {
		return ResultRejected
	}
	return ResultApplied
}
