package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/lllypuk/styx/internal/infrastructure/metrics"
)

func TestSocialMetrics_Recorder(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewSocialMetrics(registry)

	m.WriteConflict()
	m.WriteConflict()
	m.ThreadMutation("like")
	m.DailyReward(true)
	m.DailyReward(false)
	m.DailyReward(false)
	m.BadgePurchase("purchased")

	assert.InDelta(t, 2, testutil.ToFloat64(m.WriteConflicts), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ThreadMutations.WithLabelValues("like")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.DailyRewards.WithLabelValues("granted")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.DailyRewards.WithLabelValues("skipped")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.BadgePurchases.WithLabelValues("purchased")), 0)
}

func TestSocialMetrics_DoubleRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics.NewSocialMetrics(registry)

	assert.Panics(t, func() { metrics.NewSocialMetrics(registry) })
}
