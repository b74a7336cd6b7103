// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ItemsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_items_processed_total",
			Help: "Total number of content items processed, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	ItemsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_items_failed_total",
			Help: "Total number of content items that failed, by stage and error code",
		},
		[]string{"stage", "error_code"},
	)

	RemoteCallAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_call_attempts_total",
			Help: "Remote call attempts made under the retry policy",
		},
		[]string{"operation", "result"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_generation_duration_seconds",
			Help:    "Duration of image generation calls in seconds",
			Buckets: []float64{1, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider"},
	)

	PostsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_published_total",
			Help: "Total number of successful publishes",
		},
		[]string{"platform", "post_type"},
	)

	DailyPosts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "daily_posts_current",
			Help: "Publishes counted against today's cap",
		},
	)

	SchedulerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scheduler_state",
			Help: "1 for the scheduler's current state, 0 otherwise",
		},
		[]string{"state"},
	)
)
