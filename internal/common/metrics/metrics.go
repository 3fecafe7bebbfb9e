// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_api_requests_total",
			Help: "Total requests issued to the record-keeping collaborator",
		},
		[]string{"operation", "outcome"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "card_api_request_duration_seconds",
			Help: "Duration of collaborator round trips in seconds",
		},
		[]string{"operation"},
	)

	GridBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_grid_builds_total",
			Help: "Total card grid builds by outcome",
		},
		[]string{"outcome"},
	)

	GridIntegrityViolations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "card_grid_integrity_violations_total",
			Help: "Scheduled dose entries missing from collaborator card responses",
		},
	)

	Mutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_mutations_total",
			Help: "Add/delete administration record submissions by result",
		},
		[]string{"kind", "result"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_snapshot_cache_requests_total",
			Help: "Card snapshot cache lookups by result",
		},
		[]string{"result"},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "person_search_requests_total",
			Help: "Person retrievals by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)
)
