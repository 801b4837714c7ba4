// Package oidc verifies bearer tokens issued by the OpenID Connect identity provider.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"
)

var (
	// ErrInvalidToken covers malformed, unsigned, expired and foreign tokens
	ErrInvalidToken = errors.New("invalid token")

	// ErrVerifierUnavailable - ключи провайдера не удалось получить
	ErrVerifierUnavailable = errors.New("token verifier unavailable")
)

// Default configuration values.
const (
	DefaultRefreshInterval   = 1 * time.Hour
	DefaultUnknownKIDRefresh = 5 * time.Minute
	DefaultDiscoveryTimeout  = 10 * time.Second
	discoveryPath            = "/.well-known/openid-configuration"
)

// Config contains configuration for Verifier.
type Config struct {
	Domain            string        // identity provider host, issuer is https://{Domain}/
	Issuer            string        // overrides the issuer derived from Domain
	Audience          string        // expected aud claim
	Leeway            time.Duration // clock skew tolerance, zero by default
	RefreshInterval   time.Duration // JWKS refresh interval
	UnknownKIDRefresh time.Duration // at most one refetch per interval for a token with an unseen kid
	Timeout           time.Duration // discovery request timeout, also caps the wait for an unseen-kid refetch
	Logger            *slog.Logger
}

// Verifier validates RS256 bearer tokens against the provider's published keys.
// Keys are fetched on first use and shared by all callers; a failed fetch is retried on the next call.
// A token signed with an unseen kid triggers a rate-limited refetch, so rotated keys are picked up
// without waiting for the periodic refresh.
type Verifier struct {
	config Config
	issuer string
	http   *resty.Client
	logger *slog.Logger

	mu     sync.Mutex
	jwks   keyfunc.Keyfunc
	ctx    context.Context
	cancel context.CancelFunc
}

type discoveryDocument struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// NewVerifier creates a Verifier. No network calls are made here.
func NewVerifier(config Config) (*Verifier, error) {
	issuer := config.Issuer
	if issuer == "" {
		if config.Domain == "" {
			return nil, errors.New("oidc: domain is required")
		}
		issuer = "https://" + strings.TrimSuffix(config.Domain, "/") + "/"
	}
	if config.Audience == "" {
		return nil, errors.New("oidc: audience is required")
	}
	if config.RefreshInterval == 0 {
		config.RefreshInterval = DefaultRefreshInterval
	}
	if config.UnknownKIDRefresh == 0 {
		config.UnknownKIDRefresh = DefaultUnknownKIDRefresh
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultDiscoveryTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Verifier{
		config: config,
		issuer: issuer,
		http:   resty.New().SetTimeout(config.Timeout),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Issuer returns the expected iss claim
func (v *Verifier) Issuer() string { return v.issuer }

// Verify checks signature, issuer, audience and expiry and returns the sub claim as-is.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidToken
	}

	jwks, err := v.keys(ctx)
	if err != nil {
		return "", err
	}

	token, err := jwt.Parse(tokenString, jwks.KeyfuncCtx(ctx),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithLeeway(v.config.Leeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.config.Audience),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return subject, nil
}

// Close stops background JWKS refresh.
func (v *Verifier) Close() error {
	v.cancel()
	return nil
}

func (v *Verifier) keys(ctx context.Context) (keyfunc.Keyfunc, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.jwks != nil {
		return v.jwks, nil
	}

	jwksURL, err := v.discover(ctx)
	if err != nil {
		v.logger.WarnContext(ctx, "oidc discovery failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrVerifierUnavailable, err)
	}

	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Ctx:             v.ctx,
		RefreshInterval: v.config.RefreshInterval,
		RefreshErrorHandler: func(_ context.Context, refreshErr error) {
			v.logger.Error("failed to refresh JWKS", slog.Any("error", refreshErr))
		},
	})
	if err != nil {
		v.logger.WarnContext(ctx, "jwks fetch failed", slog.String("jwks_url", jwksURL), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrVerifierUnavailable, err)
	}

	client, err := jwkset.NewHTTPClient(jwkset.HTTPClientOptions{
		HTTPURLs:          map[string]jwkset.Storage{jwksURL: storage},
		RateLimitWaitMax:  v.config.Timeout,
		RefreshUnknownKID: rate.NewLimiter(rate.Every(v.config.UnknownKIDRefresh), 1),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerifierUnavailable, err)
	}

	jwks, err := keyfunc.New(keyfunc.Options{
		Ctx:     v.ctx,
		Storage: client,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerifierUnavailable, err)
	}

	v.logger.InfoContext(ctx, "oidc verifier initialized", slog.String("jwks_url", jwksURL))
	v.jwks = jwks
	return jwks, nil
}

func (v *Verifier) discover(ctx context.Context) (string, error) {
	var doc discoveryDocument
	resp, err := v.http.R().
		SetContext(ctx).
		SetResult(&doc).
		Get(strings.TrimSuffix(v.issuer, "/") + discoveryPath)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("discovery returned %s", resp.Status())
	}
	if doc.JWKSURI == "" {
		return "", errors.New("discovery document has no jwks_uri")
	}
	return doc.JWKSURI, nil
}
