// Package identitytest provides an in-memory identity.Verifier for tests.
package identitytest

import (
	"context"
	"sync"
	"time"

	"github.com/devfolio/portfolio-backend/internal/identity"
)

// Verifier answers from fixed token tables.
type Verifier struct {
	mu       sync.Mutex
	tokens   map[string]identity.Claims
	failures map[string]error
	calls    int
	lastOpts identity.VerifyOptions
	revoked  []string
}

func NewVerifier() *Verifier {
	return &Verifier{
		tokens:   make(map[string]identity.Claims),
		failures: make(map[string]error),
	}
}

// Allow registers token as valid for email for the next hour.
func (v *Verifier) Allow(token, email string) *Verifier {
	now := time.Now().UTC()
	return v.AllowClaims(token, identity.Claims{
		UID:       "uid-" + email,
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
		TokenID:   "jti-" + token,
	})
}

func (v *Verifier) AllowClaims(token string, claims identity.Claims) *Verifier {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens[token] = claims
	return v
}

// Fail makes token verification return err.
func (v *Verifier) Fail(token string, err error) *Verifier {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failures[token] = err
	return v
}

func (v *Verifier) Verify(ctx context.Context, token string, opts identity.VerifyOptions) (*identity.Claims, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.calls++
	v.lastOpts = opts
	if token == "" {
		return nil, identity.ErrTokenMissing
	}
	if err, ok := v.failures[token]; ok {
		return nil, err
	}
	claims, ok := v.tokens[token]
	if !ok {
		return nil, identity.ErrTokenMalformed
	}
	return &claims, nil
}

func (v *Verifier) Revoke(ctx context.Context, claims *identity.Claims) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.revoked = append(v.revoked, claims.UID)
	return nil
}

func (v *Verifier) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

func (v *Verifier) LastOptions() identity.VerifyOptions {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastOpts
}

func (v *Verifier) Revoked() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.revoked...)
}
