// Package metrics exposes Prometheus counters for the API and its business operations.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lllypuk/styx/internal/application/appcore"
)

// SocialMetrics contains Prometheus metrics for requests, write conflicts and the coin economy.
type SocialMetrics struct {
	WriteConflicts  prometheus.Counter
	ThreadMutations *prometheus.CounterVec
	DailyRewards    *prometheus.CounterVec
	BadgePurchases  *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// NewSocialMetrics creates and registers the metrics with the given registerer.
func NewSocialMetrics(registerer prometheus.Registerer) *SocialMetrics {
	m := &SocialMetrics{
		WriteConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "styx_write_conflicts_total",
			Help: "Conditional document writes rejected because the version moved",
		}),
		ThreadMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "styx_thread_mutations_total",
				Help: "Committed comment thread mutations",
			},
			[]string{"op"}, // add_comment, add_reply, edit, delete, like
		),
		DailyRewards: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "styx_daily_reward_evaluations_total",
				Help: "Daily reward evaluations by result",
			},
			[]string{"result"}, // granted/skipped
		),
		BadgePurchases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "styx_badge_purchases_total",
				Help: "Badge purchase attempts by outcome",
			},
			[]string{"outcome"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "styx_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "styx_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registerer.MustRegister(
		m.WriteConflicts,
		m.ThreadMutations,
		m.DailyRewards,
		m.BadgePurchases,
		m.HTTPRequests,
		m.HTTPDuration,
	)

	return m
}

// WriteConflict implements appcore.Recorder
func (m *SocialMetrics) WriteConflict() {
	m.WriteConflicts.Inc()
}

// ThreadMutation implements appcore.Recorder
func (m *SocialMetrics) ThreadMutation(op string) {
	m.ThreadMutations.WithLabelValues(op).Inc()
}

// DailyReward implements appcore.Recorder
func (m *SocialMetrics) DailyReward(granted bool) {
	result := "skipped"
	if granted {
		result = "granted"
	}
	m.DailyRewards.WithLabelValues(result).Inc()
}

// BadgePurchase implements appcore.Recorder
func (m *SocialMetrics) BadgePurchase(outcome string) {
	m.BadgePurchases.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records one served request. route is the registered pattern, not the raw path.
func (m *SocialMetrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

var _ appcore.Recorder = (*SocialMetrics)(nil)
