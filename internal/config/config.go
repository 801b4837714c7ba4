// Package config provides configuration loading and validation for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration constants.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultAPIPrefix       = "/api"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultMongoDBTimeout     = 10 * time.Second
	DefaultMongoDBMaxPoolSize = 100

	DefaultRedisPoolSize = 10

	DefaultAuthLeeway            = 0 * time.Second // no clock skew unless configured
	DefaultAuthRefreshInterval   = 1 * time.Hour
	DefaultAuthUnknownKIDRefresh = 5 * time.Minute

	DefaultMaxWriteAttempts = 3

	DefaultMaxUploadBytes = 10 << 20 // 10 MiB

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = time.Minute

	DefaultDailyReward = 500
)

// Media backends.
const (
	MediaBackendGridFS = "gridfs"
	MediaBackendS3     = "s3"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds the complete application configuration.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	MongoDB   MongoDBConfig   `yaml:"mongodb"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Store     StoreConfig     `yaml:"store"`
	Media     MediaConfig     `yaml:"media"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Reward    RewardConfig    `yaml:"reward"`
	Log       LogConfig       `yaml:"log"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name string `yaml:"name" env:"APP_NAME"`
	Env  string `yaml:"env" env:"APP_ENV"` // development | production
}

// ServerConfig holds HTTP server configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	APIPrefix       string        `yaml:"api_prefix" env:"SERVER_API_PREFIX"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	CORSOrigins     string        `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"` // comma separated, empty = *
}

// Address returns the full server address (host:port).
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AllowedOrigins splits CORSOrigins; nil means any origin.
func (c ServerConfig) AllowedOrigins() []string {
	var origins []string
	for o := range strings.SplitSeq(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// MongoDBConfig holds MongoDB connection configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type MongoDBConfig struct {
	URI         string        `yaml:"uri" env:"MONGODB_URI"`
	Database    string        `yaml:"database" env:"MONGODB_DATABASE"`
	Timeout     time.Duration `yaml:"timeout" env:"MONGODB_TIMEOUT"`
	MaxPoolSize uint64        `yaml:"max_pool_size" env:"MONGODB_MAX_POOL_SIZE"`
}

// RedisConfig holds Redis connection configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
}

// AuthConfig describes the identity provider whose tokens are accepted.
//
//nolint:golines // Struct tags require longer lines for readability
type AuthConfig struct {
	Domain            string        `yaml:"domain" env:"AUTH_DOMAIN"`
	Issuer            string        `yaml:"issuer" env:"AUTH_ISSUER"` // overrides https://{domain}/
	Audience          string        `yaml:"audience" env:"AUTH_AUDIENCE"`
	Leeway            time.Duration `yaml:"leeway" env:"AUTH_LEEWAY"`
	RefreshInterval   time.Duration `yaml:"refresh_interval" env:"AUTH_REFRESH_INTERVAL"`
	UnknownKIDRefresh time.Duration `yaml:"unknown_kid_refresh" env:"AUTH_UNKNOWN_KID_REFRESH"` // min gap between refetches for an unseen kid
}

// EventBusConfig holds event bus configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type EventBusConfig struct {
	Enabled            bool   `yaml:"enabled" env:"EVENTBUS_ENABLED"`
	RedisChannelPrefix string `yaml:"redis_channel_prefix" env:"EVENTBUS_REDIS_CHANNEL_PREFIX"`
	MaxRetries         int    `yaml:"max_retries" env:"EVENTBUS_MAX_RETRIES"`
}

// StoreConfig tunes the versioned writes.
type StoreConfig struct {
	MaxWriteAttempts int `yaml:"max_write_attempts" env:"STORE_MAX_WRITE_ATTEMPTS"`
}

// MediaConfig selects and configures the object store for uploads.
//
//nolint:golines // Struct tags require longer lines for readability
type MediaConfig struct {
	Backend        string   `yaml:"backend" env:"MEDIA_BACKEND"` // gridfs | s3
	Bucket         string   `yaml:"bucket" env:"MEDIA_BUCKET"`
	PublicBaseURL  string   `yaml:"public_base_url" env:"MEDIA_PUBLIC_BASE_URL"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes" env:"MEDIA_MAX_UPLOAD_BYTES"`
	S3             S3Config `yaml:"s3"`
}

// S3Config holds S3 (or compatible) settings; credentials fall back to the default AWS chain.
//
//nolint:golines // Struct tags require longer lines for readability
type S3Config struct {
	Region          string `yaml:"region" env:"MEDIA_S3_REGION"`
	Endpoint        string `yaml:"endpoint" env:"MEDIA_S3_ENDPOINT"`
	ForcePathStyle  bool   `yaml:"force_path_style" env:"MEDIA_S3_FORCE_PATH_STYLE"`
	AccessKeyID     string `yaml:"access_key_id" env:"MEDIA_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"MEDIA_S3_SECRET_ACCESS_KEY"`
	ACL             string `yaml:"acl" env:"MEDIA_S3_ACL"`
}

// RateLimitConfig configures the Redis-backed limiter.
//
//nolint:golines // Struct tags require longer lines for readability
type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled" env:"RATELIMIT_ENABLED"`
	Requests int           `yaml:"requests" env:"RATELIMIT_REQUESTS"`
	Window   time.Duration `yaml:"window" env:"RATELIMIT_WINDOW"`
	Burst    int           `yaml:"burst" env:"RATELIMIT_BURST"`
}

// RewardConfig holds the coin economy settings.
type RewardConfig struct {
	DailyAmount int `yaml:"daily_amount" env:"REWARD_DAILY_AMOUNT"`
}

// LogConfig holds logging configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // debug | info | warn | error
	Format string `yaml:"format" env:"LOG_FORMAT"` // json | text
}

// Configuration errors.
var (
	ErrConfigNotFound      = errors.New("configuration file not found")
	ErrConfigInvalid       = errors.New("invalid configuration")
	ErrInvalidDuration     = errors.New("invalid duration format")
	ErrInvalidLogLevel     = errors.New("invalid log level: must be debug, info, warn, or error")
	ErrInvalidLogFormat    = errors.New("invalid log format: must be json or text")
	ErrInvalidMediaBackend = errors.New("invalid media backend: must be gridfs or s3")
	ErrInvalidEnv          = errors.New("invalid app env: must be development or production")
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name: "styx",
			Env:  EnvDevelopment,
		},
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			APIPrefix:       DefaultAPIPrefix,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		MongoDB: MongoDBConfig{
			URI:         "mongodb://localhost:27017",
			Database:    "styx",
			Timeout:     DefaultMongoDBTimeout,
			MaxPoolSize: DefaultMongoDBMaxPoolSize,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: DefaultRedisPoolSize,
		},
		Auth: AuthConfig{
			Leeway:            DefaultAuthLeeway,
			RefreshInterval:   DefaultAuthRefreshInterval,
			UnknownKIDRefresh: DefaultAuthUnknownKIDRefresh,
		},
		EventBus: EventBusConfig{
			Enabled:            true,
			RedisChannelPrefix: "styx:events:",
			MaxRetries:         3,
		},
		Store: StoreConfig{
			MaxWriteAttempts: DefaultMaxWriteAttempts,
		},
		Media: MediaConfig{
			Backend:        MediaBackendGridFS,
			Bucket:         "media-files",
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		RateLimit: RateLimitConfig{
			Enabled:  false,
			Requests: DefaultRateLimitRequests,
			Window:   DefaultRateLimitWindow,
		},
		Reward: RewardConfig{
			DailyAmount: DefaultDailyReward,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []error

	errs = c.validateApp(errs)
	errs = c.validateServer(errs)
	errs = c.validateMongoDB(errs)
	errs = c.validateRedis(errs)
	errs = c.validateAuth(errs)
	errs = c.validateMedia(errs)
	errs = c.validateEconomy(errs)
	errs = c.validateLog(errs)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, errors.Join(errs...))
	}

	return nil
}

func (c *Config) validateApp(errs []error) []error {
	switch c.App.Env {
	case EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidEnv, c.App.Env))
	}
	return errs
}

func (c *Config) validateServer(errs []error) []error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	if c.Server.APIPrefix != "" && !strings.HasPrefix(c.Server.APIPrefix, "/") {
		errs = append(errs, errors.New("server.api_prefix must start with /"))
	}
	return errs
}

func (c *Config) validateMongoDB(errs []error) []error {
	if c.MongoDB.URI == "" {
		errs = append(errs, errors.New("mongodb.uri is required"))
	}
	if c.MongoDB.Database == "" {
		errs = append(errs, errors.New("mongodb.database is required"))
	}
	return errs
}

// Redis backs both the event bus and the rate limiter
func (c *Config) validateRedis(errs []error) []error {
	if (c.EventBus.Enabled || c.RateLimit.Enabled) && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when eventbus or ratelimit is enabled"))
	}
	return errs
}

func (c *Config) validateAuth(errs []error) []error {
	if c.Auth.Domain == "" && c.Auth.Issuer == "" {
		errs = append(errs, errors.New("auth.domain or auth.issuer is required"))
	}
	if c.Auth.Audience == "" {
		errs = append(errs, errors.New("auth.audience is required"))
	}
	if c.Auth.Leeway < 0 {
		errs = append(errs, errors.New("auth.leeway must not be negative"))
	}
	return errs
}

func (c *Config) validateMedia(errs []error) []error {
	switch strings.ToLower(c.Media.Backend) {
	case MediaBackendGridFS:
	case MediaBackendS3:
		if c.Media.S3.Region == "" {
			errs = append(errs, errors.New("media.s3.region is required for the s3 backend"))
		}
	default:
		errs = append(errs, ErrInvalidMediaBackend)
	}
	if c.Media.Bucket == "" {
		errs = append(errs, errors.New("media.bucket is required"))
	}
	if c.Media.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("media.max_upload_bytes must be positive"))
	}
	return errs
}

func (c *Config) validateEconomy(errs []error) []error {
	if c.Store.MaxWriteAttempts < 1 {
		errs = append(errs, errors.New("store.max_write_attempts must be at least 1"))
	}
	if c.Reward.DailyAmount <= 0 {
		errs = append(errs, errors.New("reward.daily_amount must be positive"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("ratelimit.requests and ratelimit.window must be positive"))
	}
	return errs
}

func (c *Config) validateLog(errs []error) []error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ErrInvalidLogLevel)
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, ErrInvalidLogFormat)
	}
	return errs
}

// IsDevelopment reports whether the app runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.App.Env != EnvProduction
}

// Load loads configuration from the default config file and environment variables.
func Load() (*Config, error) {
	return LoadFromPath("")
}

// LoadFromPath loads configuration from a specific file path.
// If path is empty, it tries to find the config file in standard locations.
func LoadFromPath(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// Loader handles configuration loading from files and environment variables.
type Loader struct {
	configPaths []string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		configPaths: []string{
			"configs/config.yaml",
			"config.yaml",
			"/etc/styx/config.yaml",
		},
	}
}

// WithConfigPaths sets custom config paths to search.
func (l *Loader) WithConfigPaths(paths []string) *Loader {
	l.configPaths = paths
	return l
}

// Load applies defaults, then the YAML file, then env overrides, then validates.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != "" || os.Getenv("CONFIG_PATH") != ""
	configPath := l.resolvePath(path)

	if configPath != "" {
		// a missing file in the search path is fine; an explicit one must load
		if err := l.loadFromFile(cfg, configPath); err != nil && explicit {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	}

	if err := l.loadEnvToStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (l *Loader) resolvePath(path string) string {
	if path != "" {
		return path
	}
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return envPath
	}
	for _, p := range l.configPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (l *Loader) loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
		return fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	return nil
}

// loadEnvToStruct walks nested structs and applies every env-tagged field that is set.
func (l *Loader) loadEnvToStruct(v reflect.Value) error {
	t := v.Type()

	for i := range v.NumField() {
		field := v.Field(i)
		fieldType := t.Field(i)

		if field.Kind() == reflect.Struct {
			if err := l.loadEnvToStruct(field); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}
		envValue := os.Getenv(envTag)
		if envValue == "" {
			continue
		}

		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s from env %s: %w", fieldType.Name, envTag, err)
		}
	}

	return nil
}

//nolint:exhaustive // config only uses these kinds
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeFor[time.Duration]() {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidDuration, value)
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		field.SetInt(i)

	case reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer value: %s", value)
		}
		field.SetUint(u)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", value)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
