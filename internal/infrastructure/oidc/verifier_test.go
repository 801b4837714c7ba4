package oidc_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/styx/internal/infrastructure/oidc"
)

const (
	testKeyID    = "test-key-id"
	testAudience = "https://api.styx.test"
)

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func jwksResponse(t *testing.T, key *rsa.PrivateKey, kid string) []byte {
	t.Helper()
	pub := key.PublicKey
	data, err := json.Marshal(map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"alg": "RS256",
			"use": "sig",
			"kid": kid,
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
	require.NoError(t, err)
	return data
}

// signingKey is the key the provider currently publishes
type signingKey struct {
	key *rsa.PrivateKey
	kid string
}

// provider serves discovery and JWKS and counts hits. While down is set discovery fails.
type provider struct {
	server    *httptest.Server
	down      atomic.Bool
	published atomic.Pointer[signingKey]
	discovery atomic.Int32
	jwks      atomic.Int32
}

// rotate replaces the published key set with key under kid
func (p *provider) rotate(key *rsa.PrivateKey, kid string) {
	p.published.Store(&signingKey{key: key, kid: kid})
}

func (p *provider) issuer() string { return p.server.URL + "/" }

func setupProvider(t *testing.T, key *rsa.PrivateKey) *provider {
	t.Helper()
	p := &provider{}
	p.rotate(key, testKeyID)
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		p.discovery.Add(1)
		if p.down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"issuer":   p.issuer(),
			"jwks_uri": p.server.URL + "/.well-known/jwks.json",
		})
	})
	mux.HandleFunc("/.well-known/jwks.json", func(w http.ResponseWriter, _ *http.Request) {
		p.jwks.Add(1)
		current := p.published.Load()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(jwksResponse(t, current.key, current.kid))
	})
	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func sign(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	return signWithKID(t, key, testKeyID, claims)
}

func signWithKID(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(issuer string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss": issuer,
		"sub": "auth0|AbC123",
		"aud": testAudience,
		"exp": now.Add(time.Hour).Unix(),
		"iat": now.Unix(),
	}
}

func newVerifier(t *testing.T, issuer string) *oidc.Verifier {
	t.Helper()
	v, err := oidc.NewVerifier(oidc.Config{Issuer: issuer, Audience: testAudience})
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func TestNewVerifier(t *testing.T) {
	v, err := oidc.NewVerifier(oidc.Config{Domain: "tenant.auth0.com", Audience: testAudience})
	require.NoError(t, err)
	assert.Equal(t, "https://tenant.auth0.com/", v.Issuer())

	_, err = oidc.NewVerifier(oidc.Config{Audience: testAudience})
	require.Error(t, err)

	_, err = oidc.NewVerifier(oidc.Config{Domain: "tenant.auth0.com"})
	require.Error(t, err)
}

func TestVerify_ValidToken(t *testing.T) {
	key := generateKey(t)
	p := setupProvider(t, key)
	v := newVerifier(t, p.issuer())

	subject, err := v.Verify(context.Background(), sign(t, key, validClaims(p.issuer())))

	require.NoError(t, err)
	assert.Equal(t, "auth0|AbC123", subject)
}

func TestVerify_Rejections(t *testing.T) {
	key := generateKey(t)
	other := generateKey(t)
	p := setupProvider(t, key)
	v := newVerifier(t, p.issuer())

	tests := []struct {
		name  string
		token func() string
	}{
		{"empty", func() string { return "" }},
		{"garbage", func() string { return "not.a.jwt" }},
		{"expired", func() string {
			c := validClaims(p.issuer())
			c["exp"] = time.Now().Add(-time.Second).Unix()
			return sign(t, key, c)
		}},
		{"missing exp", func() string {
			c := validClaims(p.issuer())
			delete(c, "exp")
			return sign(t, key, c)
		}},
		{"wrong issuer", func() string {
			c := validClaims(p.issuer())
			c["iss"] = "https://evil.example.com/"
			return sign(t, key, c)
		}},
		{"wrong audience", func() string {
			c := validClaims(p.issuer())
			c["aud"] = "someone-else"
			return sign(t, key, c)
		}},
		{"foreign key", func() string { return sign(t, other, validClaims(p.issuer())) }},
		{"missing subject", func() string {
			c := validClaims(p.issuer())
			delete(c, "sub")
			return sign(t, key, c)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token())
			require.ErrorIs(t, err, oidc.ErrInvalidToken)
		})
	}
}

func TestVerify_ProviderUnavailableThenRecovers(t *testing.T) {
	key := generateKey(t)
	p := setupProvider(t, key)
	v := newVerifier(t, p.issuer())
	token := sign(t, key, validClaims(p.issuer()))

	p.down.Store(true)
	_, err := v.Verify(context.Background(), token)
	require.ErrorIs(t, err, oidc.ErrVerifierUnavailable)

	p.down.Store(false)
	subject, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "auth0|AbC123", subject)
}

func TestVerify_PicksUpRotatedKey(t *testing.T) {
	key := generateKey(t)
	p := setupProvider(t, key)
	v := newVerifier(t, p.issuer())
	ctx := context.Background()

	_, err := v.Verify(ctx, sign(t, key, validClaims(p.issuer())))
	require.NoError(t, err)
	require.Equal(t, int32(1), p.jwks.Load())

	rotated := generateKey(t)
	p.rotate(rotated, "rotated-kid")

	subject, err := v.Verify(ctx, signWithKID(t, rotated, "rotated-kid", validClaims(p.issuer())))
	require.NoError(t, err)
	assert.Equal(t, "auth0|AbC123", subject)
	assert.Equal(t, int32(2), p.jwks.Load())

	// retired key is gone after the refetch
	_, err = v.Verify(ctx, sign(t, key, validClaims(p.issuer())))
	require.ErrorIs(t, err, oidc.ErrInvalidToken)
}

func TestVerify_UnknownKIDRefetchIsRateLimited(t *testing.T) {
	key := generateKey(t)
	p := setupProvider(t, key)
	v := newVerifier(t, p.issuer())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := v.Verify(ctx, signWithKID(t, key, "never-published", validClaims(p.issuer())))
		require.ErrorIs(t, err, oidc.ErrInvalidToken)
	}

	// initial fetch plus one refetch for the unseen kid
	assert.Equal(t, int32(2), p.jwks.Load())
}

func TestVerify_ConcurrentCallsShareOneFetch(t *testing.T) {
	key := generateKey(t)
	p := setupProvider(t, key)
	v := newVerifier(t, p.issuer())
	token := sign(t, key, validClaims(p.issuer()))

	const callers = 50
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := v.Verify(context.Background(), token)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), p.discovery.Load())
	assert.Equal(t, int32(1), p.jwks.Load())
}
