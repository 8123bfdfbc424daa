// internal/intelligence/metrics.go
package intelligence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	proposalsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quillgate_proposals_created_total",
			Help: "Adjustment proposals persisted pending, by pattern",
		},
		[]string{"pattern"},
	)

	proposalsGated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quillgate_proposals_gated_total",
			Help: "Adjustment proposals withheld by the gate, by reason",
		},
		[]string{"reason"},
	)

	proposalsApproved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quillgate_proposals_approved_total",
			Help: "Proposals approved by an educator",
		},
	)

	proposalsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quillgate_proposals_rejected_total",
			Help: "Proposals rejected by an educator",
		},
	)

	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quillgate_notifications_sent_total",
			Help: "Notifications handed to the dispatcher, by type",
		},
		[]string{"type"},
	)

	monitorSweeps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quillgate_monitor_sweeps_total",
			Help: "Completed scheduler sweeps over open assignments",
		},
	)
)
