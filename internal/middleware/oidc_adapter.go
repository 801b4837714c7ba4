package middleware

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lllypuk/styx/internal/infrastructure/oidc"
)

// OIDCVerifierAdapter adapts oidc.Verifier to the TokenVerifier interface
// and translates its errors into the middleware ones.
type OIDCVerifierAdapter struct {
	verifier *oidc.Verifier
}

// NewOIDCVerifierAdapter creates a new adapter.
func NewOIDCVerifierAdapter(verifier *oidc.Verifier) *OIDCVerifierAdapter {
	if verifier == nil {
		panic("oidc verifier is required")
	}
	return &OIDCVerifierAdapter{verifier: verifier}
}

// VerifyToken implements TokenVerifier.
func (a *OIDCVerifierAdapter) VerifyToken(ctx context.Context, token string) (string, error) {
	subject, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return "", MapVerifierError(err)
	}
	return subject, nil
}

// Close closes the underlying verifier.
func (a *OIDCVerifierAdapter) Close() error {
	return a.verifier.Close()
}

// MapVerifierError maps oidc errors to middleware errors.
func MapVerifierError(err error) error {
	switch {
	case errors.Is(err, oidc.ErrVerifierUnavailable):
		return errors.Join(ErrVerifierUnavailable, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrInvalidToken
	}
}
