package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsReceived counts raw events delivered by the chain listener.
	EventsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_events_received_total",
		Help: "Raw blockchain events received from the listener transport.",
	})

	// EventsProcessed counts events successfully projected, per domain.
	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indexer_events_processed_total",
		Help: "Events successfully applied to the projection store.",
	}, []string{"domain", "event_type"})

	// EventsSkipped counts soft-skipped events (decode failures, unknown
	// types, referential gaps), per domain and reason.
	EventsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indexer_events_skipped_total",
		Help: "Events dropped without being applied.",
	}, []string{"domain", "reason"})

	// EventsFailed counts event-scoped transaction failures.
	EventsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indexer_events_failed_total",
		Help: "Events whose projection transaction failed.",
	}, []string{"domain"})

	// ReconcileRuns counts counter-reconciliation sweeps.
	ReconcileRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_reconcile_runs_total",
		Help: "Completed follower/following count reconciliation sweeps.",
	})

	// ProjectionDuration observes per-event projection latency.
	ProjectionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "indexer_projection_duration_seconds",
		Help:    "Latency of applying one event to the projection store.",
		Buckets: prometheus.DefBuckets,
	}, []string{"domain"})
)
