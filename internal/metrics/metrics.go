// Package metrics holds the Prometheus collectors of the adapter.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stups_auth"

// Outcome and result label values.
const (
	OutcomeAuthenticated = "authenticated"
	OutcomeRejected      = "rejected"
	OutcomeInternalError = "internal_error"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// AuthAttempts counts password verifications by outcome.
	AuthAttempts = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Password verifications, differentiated by outcome.",
		},
		[]string{"outcome"},
	)

	// SearchTeamFailures counts team directory queries skipped during a search.
	SearchTeamFailures = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_team_failures_total",
			Help:      "Team directory queries that failed and were left out of a search result.",
		},
		[]string{"team"},
	)

	// DirectoryRequestDuration observes team directory round trips.
	DirectoryRequestDuration = promauto.NewHistogramVec( //nolint:gochecknoglobals
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "directory_request_duration_seconds",
			Help:      "Duration of team directory requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"result"},
	)

	// TokenRefresh counts service token acquisitions by result.
	TokenRefresh = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_token_refresh_total",
			Help:      "Service token acquisitions, differentiated by result.",
		},
		[]string{"result"},
	)
)
