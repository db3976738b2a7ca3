package dating

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	swipesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_swipes_total",
			Help: "Total number of processed swipes",
		},
		[]string{"direction", "outcome"},
	)

	matchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_matches_created_total",
			Help: "Total number of matches created",
		},
	)

	stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_state_transitions_total",
			Help: "Relationship lifecycle transitions",
		},
		[]string{"from", "to"},
	)

	standoutBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_standout_batches_total",
			Help: "Standout batch requests by source",
		},
		[]string{"source"},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_compatibility_scores",
			Help:    "Distribution of compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	candidatePipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_candidate_pipeline_duration_seconds",
			Help:    "Time spent in the candidate filter pipeline",
			Buckets: prometheus.DefBuckets,
		},
	)

	reportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_reports_total",
			Help: "Total number of user reports",
		},
	)

	autoBansTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_auto_bans_total",
			Help: "Users banned by the report threshold",
		},
	)

	suspiciousSessionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_suspicious_sessions_total",
			Help: "Swipe sessions flagged by velocity heuristics",
		},
	)
)

func RecordSwipe(direction, outcome string) {
	swipesTotal.WithLabelValues(direction, outcome).Inc()
}

func RecordMatch() {
	matchesTotal.Inc()
}

func RecordStateTransition(from, to State) {
	stateTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
}

func RecordStandoutBatch(source string) {
	standoutBatchesTotal.WithLabelValues(source).Inc()
}

func RecordCompatibilityScore(score int) {
	compatibilityScores.Observe(float64(score))
}

func RecordCandidatePipeline(duration time.Duration) {
	candidatePipelineDuration.Observe(duration.Seconds())
}

func RecordReport() {
	reportsTotal.Inc()
}

func RecordAutoBan() {
	autoBansTotal.Inc()
}

func RecordSuspiciousSession() {
	suspiciousSessionsTotal.Inc()
}
