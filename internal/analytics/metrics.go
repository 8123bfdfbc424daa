// internal/analytics/metrics.go
package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	snapshotCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quillgate_analytics_snapshot_cache_hits_total",
			Help: "Class analytics served from the snapshot cache",
		},
	)

	snapshotCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quillgate_analytics_snapshot_cache_misses_total",
			Help: "Class analytics recomputed from telemetry",
		},
	)
)
