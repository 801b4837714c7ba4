// Package main provides the API server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/styx/internal/application/catalog"
	"github.com/lllypuk/styx/internal/application/ledger"
	"github.com/lllypuk/styx/internal/application/media"
	postapp "github.com/lllypuk/styx/internal/application/post"
	"github.com/lllypuk/styx/internal/application/reward"
	"github.com/lllypuk/styx/internal/application/thread"
	userapp "github.com/lllypuk/styx/internal/application/user"
	"github.com/lllypuk/styx/internal/config"
	"github.com/lllypuk/styx/internal/domain/event"
	httphandler "github.com/lllypuk/styx/internal/handler/http"
	"github.com/lllypuk/styx/internal/infrastructure/eventbus"
	"github.com/lllypuk/styx/internal/infrastructure/healthcheck"
	"github.com/lllypuk/styx/internal/infrastructure/metrics"
	mongodbinfra "github.com/lllypuk/styx/internal/infrastructure/mongodb"
	"github.com/lllypuk/styx/internal/infrastructure/notify"
	"github.com/lllypuk/styx/internal/infrastructure/oidc"
	"github.com/lllypuk/styx/internal/infrastructure/repository/mongodb"
	"github.com/lllypuk/styx/internal/infrastructure/storage"
	"github.com/lllypuk/styx/internal/middleware"
)

// Container initialization timeouts.
const (
	containerInitTimeout   = 30 * time.Second
	redisPingTimeout       = 5 * time.Second
	mongoDisconnectTimeout = 10 * time.Second
)

// PostStore is what the post use cases and the reward evaluator need from storage.
type PostStore interface {
	postapp.Repository
	reward.PostCounter
}

// Repositories groups the storage the application layer runs on.
// Tests fill it with in-memory implementations.
type Repositories struct {
	Users      userapp.Repository
	Posts      PostStore
	Badges     catalog.BadgeRepository
	Categories catalog.CategoryRepository

	MediaStore  media.ObjectStore
	MediaSource media.ObjectSource // nil when objects are served outside the API
}

// Container holds all application dependencies and manages their lifecycle.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	MongoDB  *mongo.Client
	Database *mongo.Database
	Redis    *redis.Client
	EventBus *eventbus.RedisEventBus
	Verifier *oidc.Verifier
	Registry *prometheus.Registry
	Metrics  *metrics.SocialMetrics
	Health   *healthcheck.Aggregator

	Repos Repositories

	// Middleware
	AuthMiddleware      echo.MiddlewareFunc
	RateLimitMiddleware echo.MiddlewareFunc

	// HTTP Handlers
	CatalogHandler *httphandler.CatalogHandler
	UserHandler    *httphandler.UserHandler
	CoinHandler    *httphandler.CoinHandler
	PostHandler    *httphandler.PostHandler
	CommentHandler *httphandler.CommentHandler
	MediaHandler   *httphandler.MediaHandler
}

// ContainerOption configures the Container.
type ContainerOption func(*Container)

// WithLogger sets a custom logger for the container.
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(c *Container) {
		c.Logger = logger
	}
}

// NewContainer connects to MongoDB and Redis, builds the verifier and wires every handler.
func NewContainer(cfg *config.Config, opts ...ContainerOption) (*Container, error) {
	c := newBareContainer(cfg, opts...)

	if err := c.setupInfrastructure(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup infrastructure: %w", err)
	}

	if err := c.setupRepositories(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup repositories: %w", err)
	}

	if err := c.setupAuth(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup auth: %w", err)
	}

	c.setupRateLimit()
	c.setupHealth()
	c.setupHTTPHandlers()

	if err := c.validateWiring(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("wiring validation failed: %w", err)
	}

	return c, nil
}

// newBareContainer builds a container with metrics but no connections
func newBareContainer(cfg *config.Config, opts ...ContainerOption) *Container {
	c := &Container{
		Config:   cfg,
		Logger:   slog.Default(),
		Registry: prometheus.NewRegistry(),
		Health:   healthcheck.NewAggregator(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.NewSocialMetrics(c.Registry)
	return c
}

func (c *Container) validateWiring() error {
	var errs []error

	if c.MongoDB == nil {
		errs = append(errs, errors.New("mongodb client not initialized"))
	}
	if c.Config.EventBus.Enabled && c.EventBus == nil {
		errs = append(errs, errors.New("event bus enabled but not initialized"))
	}
	if c.AuthMiddleware == nil {
		errs = append(errs, errors.New("auth middleware not initialized"))
	}
	if c.Repos.MediaStore == nil {
		errs = append(errs, errors.New("media store not initialized"))
	}

	return errors.Join(errs...)
}

// setupInfrastructure initializes MongoDB, Redis and the event bus.
func (c *Container) setupInfrastructure() error {
	ctx, cancel := context.WithTimeout(context.Background(), containerInitTimeout)
	defer cancel()

	if err := c.setupMongoDB(ctx); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}

	if c.Config.EventBus.Enabled || c.Config.RateLimit.Enabled {
		if err := c.setupRedis(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}

	if c.Config.EventBus.Enabled {
		c.setupEventBus()
	}

	return nil
}

func (c *Container) setupMongoDB(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(c.Config.MongoDB.URI).
		SetMaxPoolSize(c.Config.MongoDB.MaxPoolSize).
		SetTimeout(c.Config.MongoDB.Timeout)

	client, connectErr := mongo.Connect(clientOpts)
	if connectErr != nil {
		return fmt.Errorf("failed to connect: %w", connectErr)
	}
	c.MongoDB = client

	pingCtx, cancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.Database = client.Database(c.Config.MongoDB.Database)

	c.Logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", c.Config.MongoDB.Database),
	)

	indexCtx, indexCancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer indexCancel()

	if indexErr := mongodbinfra.CreateAllIndexes(indexCtx, c.Database); indexErr != nil {
		return fmt.Errorf("failed to create indexes: %w", indexErr)
	}

	c.Logger.InfoContext(ctx, "MongoDB indexes created successfully")
	return nil
}

func (c *Container) setupRedis(ctx context.Context) error {
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
		PoolSize: c.Config.Redis.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if pingErr := c.Redis.Ping(pingCtx).Err(); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.Logger.InfoContext(ctx, "connected to Redis",
		slog.String("addr", c.Config.Redis.Addr),
	)
	return nil
}

func (c *Container) setupEventBus() {
	retry := eventbus.DefaultRetryConfig()
	retry.MaxRetries = c.Config.EventBus.MaxRetries

	c.EventBus = eventbus.NewRedisEventBus(c.Redis,
		eventbus.WithLogger(c.Logger),
		eventbus.WithChannelPrefix(c.Config.EventBus.RedisChannelPrefix),
		eventbus.WithRetryConfig(retry),
	)
	c.Logger.Debug("event bus initialized")
}

// setupRepositories builds the Mongo repositories and the configured media backend.
func (c *Container) setupRepositories() error {
	db := c.Database

	c.Repos.Users = mongodb.NewMongoUserRepository(
		db.Collection(mongodbinfra.CollectionUsers),
		mongodb.WithUserRepoLogger(c.Logger),
	)
	c.Repos.Posts = mongodb.NewMongoPostRepository(
		db.Collection(mongodbinfra.CollectionPosts),
		mongodb.WithPostRepoLogger(c.Logger),
	)
	c.Repos.Badges = mongodb.NewMongoBadgeRepository(db.Collection(mongodbinfra.CollectionBadges), c.Logger)
	c.Repos.Categories = mongodb.NewMongoCategoryRepository(db.Collection(mongodbinfra.CollectionCategories), c.Logger)

	mediaCfg := c.Config.Media
	switch mediaCfg.Backend {
	case config.MediaBackendS3:
		store, err := storage.NewS3Store(storage.S3Config{
			Bucket:          mediaCfg.Bucket,
			Region:          mediaCfg.S3.Region,
			Endpoint:        mediaCfg.S3.Endpoint,
			ForcePathStyle:  mediaCfg.S3.ForcePathStyle,
			AccessKeyID:     mediaCfg.S3.AccessKeyID,
			SecretAccessKey: mediaCfg.S3.SecretAccessKey,
			PublicBaseURL:   mediaCfg.PublicBaseURL,
			ACL:             mediaCfg.S3.ACL,
		}, c.Logger)
		if err != nil {
			return fmt.Errorf("s3 media store: %w", err)
		}
		c.Repos.MediaStore = store
	default:
		store := storage.NewGridFSStore(db, mediaCfg.Bucket, mediaCfg.PublicBaseURL, c.Logger)
		c.Repos.MediaStore = store
		c.Repos.MediaSource = store
	}

	c.Logger.Debug("repositories initialized", slog.String("media_backend", mediaCfg.Backend))
	return nil
}

// setupAuth builds the OIDC verifier; keys are fetched lazily on the first request.
func (c *Container) setupAuth() error {
	verifier, err := oidc.NewVerifier(oidc.Config{
		Domain:            c.Config.Auth.Domain,
		Issuer:            c.Config.Auth.Issuer,
		Audience:          c.Config.Auth.Audience,
		Leeway:            c.Config.Auth.Leeway,
		RefreshInterval:   c.Config.Auth.RefreshInterval,
		UnknownKIDRefresh: c.Config.Auth.UnknownKIDRefresh,
		Logger:            c.Logger,
	})
	if err != nil {
		return err
	}
	c.Verifier = verifier

	authConfig := middleware.DefaultAuthConfig()
	authConfig.Logger = c.Logger
	authConfig.Verifier = middleware.NewOIDCVerifierAdapter(verifier)
	c.AuthMiddleware = middleware.Auth(authConfig)

	c.Logger.Info("token verifier configured", slog.String("issuer", verifier.Issuer()))
	return nil
}

func (c *Container) setupRateLimit() {
	if !c.Config.RateLimit.Enabled || c.Redis == nil {
		return
	}

	rl := middleware.DefaultRateLimitConfig()
	rl.Logger = c.Logger
	rl.Store = middleware.NewRedisRateLimitStore(c.Redis, "")
	rl.Limit = c.Config.RateLimit.Requests
	rl.Window = c.Config.RateLimit.Window
	rl.BurstSize = c.Config.RateLimit.Burst
	c.RateLimitMiddleware = middleware.RateLimit(rl)
}

func (c *Container) setupHealth() {
	if c.MongoDB != nil {
		c.Health.Critical(healthcheck.NewMongoChecker(c.MongoDB))
	}
	if c.Redis != nil {
		c.Health.Optional(healthcheck.NewRedisChecker(c.Redis))
	}
	if c.EventBus != nil {
		c.Health.Optional(healthcheck.NewEventBusChecker(c.EventBus))
	}
}

// setupHTTPHandlers wires use cases over c.Repos into the handlers.
func (c *Container) setupHTTPHandlers() {
	cfg := c.Config
	attempts := cfg.Store.MaxWriteAttempts

	userUpdater := userapp.NewUpdater(c.Repos.Users,
		userapp.WithWriteAttempts(attempts),
		userapp.WithRecorder(c.Metrics),
		userapp.WithLogger(c.Logger),
	)
	postMutator := postapp.NewMutator(c.Repos.Posts,
		postapp.WithWriteAttempts(attempts),
		postapp.WithRecorder(c.Metrics),
		postapp.WithLogger(c.Logger),
	)

	// a nil *RedisEventBus must not reach the service as a non-nil interface
	var bus event.Bus
	if c.EventBus != nil {
		bus = c.EventBus
	}
	threads := thread.NewService(postMutator, bus,
		thread.WithRecorder(c.Metrics),
		thread.WithLogger(c.Logger),
	)

	c.CatalogHandler = httphandler.NewCatalogHandler(
		catalog.NewListBadgesUseCase(c.Repos.Badges),
		catalog.NewListCategoriesUseCase(c.Repos.Categories),
	)
	c.UserHandler = httphandler.NewUserHandler(
		userapp.NewRegisterUserUseCase(c.Repos.Users),
		userapp.NewGetProfileUseCase(c.Repos.Users),
		userapp.NewUpdateProfileUseCase(userUpdater),
		userapp.NewUpdatePhotoUseCase(userUpdater),
	)
	c.CoinHandler = httphandler.NewCoinHandler(
		ledger.NewPurchaseBadgeUseCase(userUpdater, c.Metrics, c.Logger),
		reward.NewDailyRewardUseCase(c.Repos.Posts, userUpdater,
			reward.WithAmount(cfg.Reward.DailyAmount),
			reward.WithRecorder(c.Metrics),
			reward.WithLogger(c.Logger),
		),
		cfg.Reward.DailyAmount,
	)
	c.PostHandler = httphandler.NewPostHandler(
		postapp.NewListPostsUseCase(c.Repos.Posts),
		postapp.NewCreatePostUseCase(c.Repos.Posts, nil, c.Logger),
		postapp.NewDeletePostUseCase(postMutator, c.Logger),
		postapp.NewAttachMediaUseCase(postMutator),
		threads,
	)
	c.CommentHandler = httphandler.NewCommentHandler(threads)

	mediaOpts := []httphandler.MediaHandlerOption{httphandler.WithMaxUploadBytes(cfg.Media.MaxUploadBytes)}
	if c.Repos.MediaSource != nil {
		mediaOpts = append(mediaOpts, httphandler.WithDownloads(media.NewDownloadUseCase(c.Repos.MediaSource)))
	}
	c.MediaHandler = httphandler.NewMediaHandler(media.NewUploadUseCase(c.Repos.MediaStore, c.Logger), mediaOpts...)

	c.Logger.Debug("http handlers initialized")
}

// registerEventHandlers subscribes the reply notification mailer.
func (c *Container) registerEventHandlers() error {
	handler := eventbus.NewCommentNotificationHandler(
		notify.NewLogMailer(c.Logger),
		eventbus.WithNotificationLogger(c.Logger),
	)
	return handler.Register(c.EventBus)
}

// StartEventBus registers handlers and runs the bus until ctx is cancelled.
func (c *Container) StartEventBus(ctx context.Context) error {
	if c.EventBus == nil {
		c.Logger.InfoContext(ctx, "event bus disabled, reply notifications are off")
		return nil
	}

	if err := c.registerEventHandlers(); err != nil {
		return fmt.Errorf("failed to register event handlers: %w", err)
	}

	go func() {
		if err := c.EventBus.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.Logger.Error("event bus error", slog.String("error", err.Error()))
		}
	}()

	c.Logger.InfoContext(ctx, "event bus started")
	return nil
}

// Close releases every resource the container opened.
func (c *Container) Close() error {
	c.Logger.Info("closing container resources...")

	var errs []error

	if c.Verifier != nil {
		if err := c.Verifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("verifier close: %w", err))
		}
	}

	if c.EventBus != nil {
		if err := c.EventBus.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("event bus shutdown: %w", err))
		} else {
			c.Logger.Debug("event bus stopped")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		} else {
			c.Logger.Debug("redis connection closed")
		}
	}

	if c.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
		defer cancel()

		if err := c.MongoDB.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb disconnect: %w", err))
		} else {
			c.Logger.Debug("mongodb connection closed")
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.Logger.Info("all container resources closed")
	return nil
}
