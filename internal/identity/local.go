package identity

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/devfolio/portfolio-backend/internal/apperror"
	"github.com/devfolio/portfolio-backend/internal/kv"
)

const (
	localIssuer      = "portfolio-backend"
	revokedKeyPrefix = "revoked:"
)

var ErrInvalidCredentials = apperror.Unauthenticated("Invalid username or password")

type localClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type LocalOptions struct {
	Secret       []byte
	TTL          time.Duration
	Username     string
	PasswordHash string
	Email        string
}

// Local is the self-hosted provider: one admin account checked against a
// bcrypt hash, HS256 session tokens and revocation by token ID.
type Local struct {
	opts    LocalOptions
	revoked kv.Store
	now     func() time.Time
}

func NewLocal(opts LocalOptions, revoked kv.Store) *Local {
	return &Local{opts: opts, revoked: revoked, now: time.Now}
}

// Login checks the admin credentials and issues a session token.
func (l *Local) Login(ctx context.Context, username, password string) (string, *Claims, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(l.opts.Username)) == 1
	// both checks run before branching
	passErr := bcrypt.CompareHashAndPassword([]byte(l.opts.PasswordHash), []byte(password))
	if !userOK || passErr != nil {
		return "", nil, ErrInvalidCredentials
	}
	return l.Issue(l.opts.Username, l.opts.Email)
}

func (l *Local) Issue(subject, email string) (string, *Claims, error) {
	now := l.now()
	claims := localClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    localIssuer,
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.opts.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.opts.Secret)
	if err != nil {
		return "", nil, apperror.Internal("sign token", err)
	}
	return signed, toClaims(&claims), nil
}

func (l *Local) Verify(ctx context.Context, token string, opts VerifyOptions) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenMissing
	}
	if !looksLikeJWT(token) {
		return nil, ErrTokenMalformed
	}

	var parsed localClaims
	_, err := jwt.ParseWithClaims(token, &parsed,
		func(t *jwt.Token) (any, error) { return l.opts.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(l.now),
	)
	if err != nil {
		return nil, mapJWTErr(err)
	}

	claims := toClaims(&parsed)
	if opts.CheckRevoked {
		_, revoked, err := l.revoked.Get(ctx, revokedKeyPrefix+claims.TokenID)
		if err != nil {
			return nil, withCause(ErrVerificationFailed, err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Revoke blocks the token ID until the token would have expired anyway.
func (l *Local) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.TokenID == "" {
		return ErrTokenMissing
	}
	ttl := claims.ExpiresAt.Sub(l.now())
	if ttl <= 0 {
		return nil
	}
	if err := l.revoked.Set(ctx, revokedKeyPrefix+claims.TokenID, []byte("1"), ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Refresh issues a new token for the same identity and revokes the old one.
func (l *Local) Refresh(ctx context.Context, claims *Claims) (string, *Claims, error) {
	token, fresh, err := l.Issue(claims.UID, claims.Email)
	if err != nil {
		return "", nil, err
	}
	if err := l.Revoke(ctx, claims); err != nil {
		return "", nil, err
	}
	return token, fresh, nil
}

func mapJWTErr(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return withCause(ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return withCause(ErrTokenMalformed, err)
	default:
		return withCause(ErrVerificationFailed, err)
	}
}

func toClaims(c *localClaims) *Claims {
	out := &Claims{
		UID:     c.Subject,
		Email:   c.Email,
		TokenID: c.ID,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.UTC()
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.UTC()
	}
	return out
}
