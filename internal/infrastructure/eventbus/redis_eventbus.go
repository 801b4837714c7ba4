// Package eventbus delivers domain events between processes over Redis Pub/Sub.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lllypuk/styx/internal/application/appcore"
	"github.com/lllypuk/styx/internal/domain/event"
)

const defaultChannelPrefix = "styx:events:"

var (
	errNilEvent       = errors.New("event cannot be nil")
	errAlreadyRunning = errors.New("event bus is already running")
)

// EventHandler is a function that handles domain events.
type EventHandler func(ctx context.Context, event event.DomainEvent) error

// PayloadEvent is what subscribers receive: the envelope metadata plus the JSON
// the publisher marshalled, ready to decode into the concrete event type.
type PayloadEvent interface {
	event.DomainEvent
	Payload() json.RawMessage
	EnvelopeID() string
}

// envelope is the wire form of a published event.
type envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"event_type"`
	Aggregate  string          `json:"aggregate_id"`
	Actor      string          `json:"actor_id,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	Occurred   time.Time       `json:"occurred_at"`
	RawPayload json.RawMessage `json:"payload"`
}

func newEnvelope(ctx context.Context, evt event.DomainEvent) (envelope, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return envelope{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return envelope{
		ID:         uuid.NewString(),
		Type:       evt.EventType(),
		Aggregate:  evt.AggregateID(),
		Actor:      evt.ActorID(),
		RequestID:  appcore.RequestID(ctx),
		Occurred:   evt.OccurredAt(),
		RawPayload: payload,
	}, nil
}

// envelope itself is the PayloadEvent handed to subscribers
func (e envelope) EventType() string        { return e.Type }
func (e envelope) AggregateID() string      { return e.Aggregate }
func (e envelope) ActorID() string          { return e.Actor }
func (e envelope) OccurredAt() time.Time    { return e.Occurred }
func (e envelope) Payload() json.RawMessage { return e.RawPayload }
func (e envelope) EnvelopeID() string       { return e.ID }

// RetryConfig bounds how often a failing handler is re-run for one event.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
}

// DefaultRetryConfig: 3 retries, 100ms doubling up to 5s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  2,
	}
}

// delay before retry number attempt (1-based)
func (r RetryConfig) delay(attempt int) time.Duration {
	d := r.InitialBackoff
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * r.BackoffFactor)
		if d >= r.MaxBackoff {
			return r.MaxBackoff
		}
	}
	return d
}

// RedisEventBus implements event.Bus using Redis Pub/Sub. Delivery is
// at-most-once: events published while no subscriber listens are lost.
type RedisEventBus struct {
	client        redis.UniversalClient
	logger        *slog.Logger
	retry         RetryConfig
	channelPrefix string

	mu       sync.RWMutex
	handlers map[string][]EventHandler
	pubsub   *redis.PubSub
	running  bool

	stop     chan struct{}
	stopOnce sync.Once
	inflight sync.WaitGroup
}

// Option configures a RedisEventBus.
type Option func(*RedisEventBus)

// WithLogger sets the logger for the event bus.
func WithLogger(logger *slog.Logger) Option {
	return func(b *RedisEventBus) {
		b.logger = logger
	}
}

// WithRetryConfig sets the per-handler retry policy.
func WithRetryConfig(config RetryConfig) Option {
	return func(b *RedisEventBus) {
		b.retry = config
	}
}

// WithChannelPrefix sets a prefix for Redis channel names; empty keeps the default.
func WithChannelPrefix(prefix string) Option {
	return func(b *RedisEventBus) {
		if prefix != "" {
			b.channelPrefix = prefix
		}
	}
}

// NewRedisEventBus creates a new Redis-based event bus.
func NewRedisEventBus(client redis.UniversalClient, opts ...Option) *RedisEventBus {
	b := &RedisEventBus{
		client:        client,
		logger:        slog.Default(),
		retry:         DefaultRetryConfig(),
		channelPrefix: defaultChannelPrefix,
		handlers:      make(map[string][]EventHandler),
		stop:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish sends evt on the channel of its event type.
func (b *RedisEventBus) Publish(ctx context.Context, evt event.DomainEvent) error {
	if evt == nil {
		return errNilEvent
	}

	env, err := newEnvelope(ctx, evt)
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := b.channelPrefix + env.Type
	if err = b.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event to Redis: %w", err)
	}

	b.logger.DebugContext(ctx, "event published",
		slog.String("event_id", env.ID),
		slog.String("event_type", env.Type),
		slog.String("aggregate_id", env.Aggregate),
		slog.String("channel", channel),
	)
	return nil
}

// Subscribe registers handler for eventType. Must be called before Start.
func (b *RedisEventBus) Subscribe(eventType string, handler EventHandler) error {
	switch {
	case eventType == "":
		return errors.New("event type cannot be empty")
	case handler == nil:
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.mu.Unlock()
	return nil
}

// Start listens on the subscribed channels until Shutdown or ctx cancellation.
func (b *RedisEventBus) Start(ctx context.Context) error {
	channels, err := b.markRunning()
	if err != nil {
		return err
	}
	defer b.markStopped()

	if len(channels) == 0 {
		b.logger.WarnContext(ctx, "starting event bus with no subscriptions")
		return b.wait(ctx, nil)
	}

	pubsub := b.client.Subscribe(ctx, channels...)
	if _, err = pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to channels: %w", err)
	}

	b.mu.Lock()
	b.pubsub = pubsub
	b.mu.Unlock()

	b.logger.InfoContext(ctx, "event bus started", slog.Any("channels", channels))
	return b.wait(ctx, pubsub.Channel())
}

// wait dispatches messages until the bus is stopped; a nil msgs only waits
func (b *RedisEventBus) wait(ctx context.Context, msgs <-chan *redis.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.stop:
			return nil
		case msg, ok := <-msgs:
			if !ok {
				b.logger.WarnContext(ctx, "message channel closed")
				return nil
			}
			b.dispatch(ctx, msg)
		}
	}
}

func (b *RedisEventBus) markRunning() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil, errAlreadyRunning
	}
	b.running = true

	channels := make([]string, 0, len(b.handlers))
	for eventType := range b.handlers {
		channels = append(channels, b.channelPrefix+eventType)
	}
	return channels, nil
}

func (b *RedisEventBus) markStopped() {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
}

// Shutdown stops the listener and waits for in-flight handlers.
func (b *RedisEventBus) Shutdown() error {
	b.stopOnce.Do(func() { close(b.stop) })
	b.inflight.Wait()

	b.mu.Lock()
	pubsub := b.pubsub
	b.pubsub = nil
	b.mu.Unlock()

	if pubsub == nil {
		return nil
	}
	if err := pubsub.Close(); err != nil {
		return fmt.Errorf("failed to close pubsub: %w", err)
	}
	return nil
}

// IsRunning reports whether Start is listening; the health checker reads it.
func (b *RedisEventBus) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running
}

// HandlerCount returns the number of handlers registered for an event type.
func (b *RedisEventBus) HandlerCount(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

func (b *RedisEventBus) dispatch(ctx context.Context, msg *redis.Message) {
	var env envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		b.logger.ErrorContext(ctx, "failed to unmarshal event",
			slog.String("channel", msg.Channel),
			slog.String("error", err.Error()),
		)
		return
	}
	if env.RequestID != "" {
		ctx = appcore.WithRequestID(ctx, env.RequestID)
	}

	b.mu.RLock()
	handlers := b.handlers[env.Type]
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.inflight.Add(1)
		go b.run(ctx, handler, env)
	}
}

// run calls handler until it succeeds or the retry budget is spent
func (b *RedisEventBus) run(ctx context.Context, handler EventHandler, env envelope) {
	defer b.inflight.Done()

	var err error
	for attempt := 0; attempt <= b.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-b.stop:
				return
			case <-time.After(b.retry.delay(attempt)):
			}
		}

		if err = handler(ctx, env); err == nil {
			return
		}
		b.logger.WarnContext(ctx, "event handler failed",
			slog.String("event_id", env.ID),
			slog.String("event_type", env.Type),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
	}

	b.logger.ErrorContext(ctx, "event dropped after retries",
		slog.String("event_id", env.ID),
		slog.String("event_type", env.Type),
		slog.Int("max_retries", b.retry.MaxRetries),
		slog.String("error", err.Error()),
	)
}

var _ event.Bus = (*RedisEventBus)(nil)
