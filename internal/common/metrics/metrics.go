// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	ScoresComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidescore_scores_computed_total",
			Help: "Scores computed, by risk level",
		},
		[]string{"risk_level"},
	)

	ScaledScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tidescore_scaled_score",
			Help:    "Distribution of computed scaled scores",
			Buckets: []float64{100, 250, 350, 450, 550, 650, 750, 850},
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidescore_cache_lookups_total",
			Help: "Redis cache lookups, by cache and result",
		},
		[]string{"cache", "result"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidescore_notifications_total",
			Help: "Score notifications, by channel and status",
		},
		[]string{"channel", "status"},
	)
)

// ObserveScore records one computed score.
func ObserveScore(riskLevel string, scaled int) {
	ScoresComputed.WithLabelValues(riskLevel).Inc()
	ScaledScore.Observe(float64(scaled))
}

// ObserveCache records a cache hit or miss.
func ObserveCache(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}
