package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Rate limit defaults.
const (
	DefaultRateLimit       = 100
	DefaultRateLimitWindow = time.Minute
	DefaultBurstSize       = 10

	defaultRateLimitPrefix  = "styx:ratelimit:"
	defaultRateLimitMessage = "Too many requests. Please try again later."
)

// RateLimitStore counts requests per key inside a fixed window.
type RateLimitStore interface {
	// Hit counts one request and returns the count so far and what is left of the window.
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	Logger *slog.Logger

	// Store is the counter backend. Nil disables limiting.
	Store RateLimitStore

	// Limit is the number of requests allowed per window, BurstSize is added on top.
	Limit     int
	Window    time.Duration
	BurstSize int

	// KeyFunc overrides the default subject-or-IP key.
	KeyFunc func(c echo.Context) string

	SkipPaths []string
	Message   string
}

// DefaultRateLimitConfig returns a RateLimitConfig with sensible defaults.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Logger:    slog.Default(),
		Limit:     DefaultRateLimit,
		Window:    DefaultRateLimitWindow,
		BurstSize: DefaultBurstSize,
		SkipPaths: []string{"/health", "/ready", "/metrics"},
		Message:   defaultRateLimitMessage,
	}
}

func (c *RateLimitConfig) normalize() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Limit <= 0 {
		c.Limit = DefaultRateLimit
	}
	if c.Window <= 0 {
		c.Window = DefaultRateLimitWindow
	}
	if c.Message == "" {
		c.Message = defaultRateLimitMessage
	}
	if c.KeyFunc == nil {
		c.KeyFunc = rateLimitKey
	}
}

// RateLimit returns a fixed-window rate limiting middleware.
// Store failures let the request through.
func RateLimit(config RateLimitConfig) echo.MiddlewareFunc {
	config.normalize()

	skip := make(map[string]bool, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skip[path] = true
	}
	budget := int64(config.Limit + config.BurstSize)
	budgetHeader := strconv.FormatInt(budget, 10)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if config.Store == nil || skip[path] {
				return next(c)
			}

			ctx := c.Request().Context()
			key := config.KeyFunc(c)

			count, resetIn, err := config.Store.Hit(ctx, key, config.Window)
			if err != nil {
				config.Logger.ErrorContext(ctx, "rate limit store unavailable",
					slog.String("key", key),
					slog.String("error", err.Error()),
				)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-Ratelimit-Limit", budgetHeader)
			h.Set("X-Ratelimit-Remaining", strconv.FormatInt(max(budget-count, 0), 10))
			if resetIn > 0 {
				h.Set("X-Ratelimit-Reset", strconv.FormatInt(time.Now().Add(resetIn).Unix(), 10))
			}

			if count <= budget {
				return next(c)
			}

			config.Logger.WarnContext(ctx, "rate limit exceeded",
				slog.String("key", key),
				slog.Int64("count", count),
				slog.Int64("limit", budget),
				slog.String("path", path),
			)
			return respondRateLimited(c, config.Message, resetIn)
		}
	}
}

// rateLimitKey keys authenticated callers by subject, everyone else by IP
func rateLimitKey(c echo.Context) string {
	if subject := GetSubjectID(c); subject != "" {
		return "subject:" + subject
	}
	return "ip:" + c.RealIP()
}

func respondRateLimited(c echo.Context, message string, retryAfter time.Duration) error {
	seconds := int64(retryAfter.Round(time.Second) / time.Second)
	if seconds > 0 {
		c.Response().Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
	}

	return c.JSON(http.StatusTooManyRequests, map[string]any{
		"success": false,
		"error": map[string]any{
			"code":        "RATE_LIMIT_EXCEEDED",
			"message":     message,
			"retry_after": seconds,
		},
	})
}

// RedisRateLimitStore keeps window counters in Redis: INCR and TTL in one
// round trip, EXPIRE only when the key has no window yet.
type RedisRateLimitStore struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedisRateLimitStore creates a store; empty keyPrefix uses "styx:ratelimit:".
func NewRedisRateLimitStore(client redis.Cmdable, keyPrefix string) *RedisRateLimitStore {
	if keyPrefix == "" {
		keyPrefix = defaultRateLimitPrefix
	}
	return &RedisRateLimitStore{client: client, keyPrefix: keyPrefix}
}

// Hit implements RateLimitStore.
func (s *RedisRateLimitStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	fullKey := s.keyPrefix + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, fullKey)
		ttl = p.TTL(ctx, fullKey)
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit pipeline: %w", err)
	}

	left := ttl.Val()
	// -1: counter without expiry (first hit, or a crash between INCR and EXPIRE)
	if left < 0 {
		if err = s.client.Expire(ctx, fullKey, window).Err(); err != nil {
			return incr.Val(), 0, fmt.Errorf("rate limit expire: %w", err)
		}
		left = window
	}
	return incr.Val(), left, nil
}
