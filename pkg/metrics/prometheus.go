package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	PollsTotal          *prometheus.CounterVec
	ChangesDetected     prometheus.Counter
	PollDuration        prometheus.Histogram
	ScheduledContainers prometheus.Gauge
	NotificationsSent   *prometheus.CounterVec
	ErrorsCount         *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PollsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "The total number of container polls by outcome",
		}, []string{"outcome"}),
		ChangesDetected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changes_detected_total",
			Help:      "The total number of container changes detected while polling",
		}),
		PollDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Time taken to poll and reconcile a container",
			Buckets:   prometheus.DefBuckets,
		}),
		ScheduledContainers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduled_containers",
			Help:      "The number of containers holding a polling slot",
		}),
		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "The total number of notifications sent by channel",
		}, []string{"channel"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}

// NewTestMetrics registers metrics on a private registry
func NewTestMetrics() *Metrics {
	return NewMetrics("test", prometheus.NewRegistry())
}
