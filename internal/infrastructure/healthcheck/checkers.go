package healthcheck

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoChecker pings the primary.
type MongoChecker struct {
	client *mongo.Client
}

// NewMongoChecker creates a MongoDB probe.
func NewMongoChecker(client *mongo.Client) *MongoChecker {
	return &MongoChecker{client: client}
}

// Name returns the name of this health checker.
func (c *MongoChecker) Name() string { return "mongodb" }

// Check performs the health check.
func (c *MongoChecker) Check(ctx context.Context) Status {
	start := time.Now()
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return Status{Healthy: false, Message: fmt.Sprintf("ping failed: %v", err), CheckedAt: time.Now()}
	}
	return Status{
		Healthy:   true,
		Details:   map[string]any{"latency": time.Since(start).String()},
		CheckedAt: time.Now(),
	}
}

// RedisChecker sends PING.
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker creates a Redis probe.
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

// Name returns the name of this health checker.
func (c *RedisChecker) Name() string { return "redis" }

// Check performs the health check.
func (c *RedisChecker) Check(ctx context.Context) Status {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return Status{Healthy: false, Message: fmt.Sprintf("ping failed: %v", err), CheckedAt: time.Now()}
	}
	return Status{Healthy: true, CheckedAt: time.Now()}
}

// Runner is what the event bus exposes about its subscriber loop.
type Runner interface {
	IsRunning() bool
}

// EventBusChecker reports whether the subscriber loop is alive.
type EventBusChecker struct {
	bus Runner
}

// NewEventBusChecker creates an event bus probe.
func NewEventBusChecker(bus Runner) *EventBusChecker {
	return &EventBusChecker{bus: bus}
}

// Name returns the name of this health checker.
func (c *EventBusChecker) Name() string { return "eventbus" }

// Check performs the health check.
func (c *EventBusChecker) Check(_ context.Context) Status {
	if !c.bus.IsRunning() {
		return Status{Healthy: false, Message: "subscriber loop is not running", CheckedAt: time.Now()}
	}
	return Status{Healthy: true, CheckedAt: time.Now()}
}
