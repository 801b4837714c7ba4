package healthcheck_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/styx/internal/infrastructure/healthcheck"
	"github.com/lllypuk/styx/internal/infrastructure/httpserver"
	"github.com/lllypuk/styx/tests/testutil"
)

type staticChecker struct {
	name    string
	healthy bool
}

func (s staticChecker) Name() string { return s.name }

func (s staticChecker) Check(context.Context) healthcheck.Status {
	return healthcheck.Status{Healthy: s.healthy, Message: s.name}
}

type fakeRunner struct{ running bool }

func (f fakeRunner) IsRunning() bool { return f.running }

func TestAggregator_CriticalFailureMakesUnready(t *testing.T) {
	agg := healthcheck.NewAggregator().
		Critical(staticChecker{name: "db", healthy: false}).
		Optional(staticChecker{name: "bus", healthy: true})

	assert.False(t, agg.IsReady(context.Background()))

	statuses := agg.GetHealthStatus(context.Background())
	require.Len(t, statuses, 2)
	assert.Equal(t, "db", statuses[0].Name)
	assert.Equal(t, httpserver.StatusUnhealthy, statuses[0].Status)
	assert.Equal(t, httpserver.StatusHealthy, statuses[1].Status)
}

func TestAggregator_OptionalFailureDegrades(t *testing.T) {
	agg := healthcheck.NewAggregator().
		Critical(staticChecker{name: "db", healthy: true}).
		Optional(healthcheck.NewEventBusChecker(fakeRunner{running: false}))

	assert.True(t, agg.IsReady(context.Background()))

	statuses := agg.GetHealthStatus(context.Background())
	assert.Equal(t, "eventbus", statuses[1].Name)
	assert.Equal(t, httpserver.StatusDegraded, statuses[1].Status)
}

func TestRedisChecker(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	checker := healthcheck.NewRedisChecker(client)

	assert.True(t, checker.Check(context.Background()).Healthy)

	mr.Close()
	st := checker.Check(context.Background())
	assert.False(t, st.Healthy)
	assert.Contains(t, st.Message, "ping failed")
}

func TestMongoChecker(t *testing.T) {
	db := testutil.SetupTestMongoDB(t)

	st := healthcheck.NewMongoChecker(db.Client()).Check(context.Background())

	assert.True(t, st.Healthy)
	assert.Contains(t, st.Details, "latency")
}
