// Package identity verifies bearer tokens issued by the configured identity
// provider and classifies every failure into one of a fixed set of errors.
package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/devfolio/portfolio-backend/internal/apperror"
)

// Claims is the subset of a verified token the backend reads.
type Claims struct {
	UID       string         `json:"uid"`
	Email     string         `json:"email"`
	IssuedAt  time.Time      `json:"iat"`
	ExpiresAt time.Time      `json:"exp"`
	TokenID   string         `json:"jti,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

type VerifyOptions struct {
	// CheckRevoked asks the provider whether the session was revoked, at
	// the cost of an extra round trip.
	CheckRevoked bool
}

type Verifier interface {
	Verify(ctx context.Context, token string, opts VerifyOptions) (*Claims, error)
}

// Revoker invalidates every outstanding token of the identity in claims.
type Revoker interface {
	Revoke(ctx context.Context, claims *Claims) error
}

var (
	ErrTokenMissing       = apperror.Unauthenticated("Authentication token is missing")
	ErrTokenMalformed     = apperror.Unauthenticated("Invalid token")
	ErrTokenExpired       = apperror.Unauthenticated("Token expired. Please sign in again.")
	ErrTokenRevoked       = apperror.Unauthenticated("Token revoked. Please sign in again.")
	ErrVerificationFailed = apperror.Unauthenticated("Authentication failed")
)

// withCause keeps sentinel matching while attaching the provider error.
func withCause(sentinel *apperror.Error, cause error) error {
	return fmt.Errorf("%w: %v", sentinel, cause)
}

// looksLikeJWT rejects values that cannot be a compact JWS before any
// provider call is made.
func looksLikeJWT(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}
