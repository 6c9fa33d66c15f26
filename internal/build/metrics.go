package build

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
	outcomeFound    = "found"
	outcomeAbsent   = "absent"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moldavite_submissions_total",
			Help: "Build submissions, labeled by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	statusLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moldavite_status_lookups_total",
			Help: "Per-resource status lookups, labeled by kind, resource and outcome.",
		},
		[]string{"kind", "resource", "outcome"},
	)

	deletedResourcesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moldavite_deleted_resources_total",
			Help: "Cluster resources deleted, labeled by kind and resource.",
		},
		[]string{"kind", "resource"},
	)
)
