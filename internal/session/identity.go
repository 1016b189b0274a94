// Package session keeps a client-side admin session alive: it caches the
// provider token, mirrors it into the auth cookie and refreshes it on a
// schedule.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// DefaultEarlyExpiry is how long before expiry a cached token stops being
// reused.
const DefaultEarlyExpiry = 5 * time.Minute

var ErrNoToken = errors.New("session: provider returned no token")

// Provider performs one round trip to the identity provider.
type Provider interface {
	FetchToken(ctx context.Context) (*oauth2.Token, error)
}

// TokenGetter is what the refresh schedule needs from an Identity.
type TokenGetter interface {
	Token(ctx context.Context, forceRefresh bool) (string, error)
}

// Identity hands out the signed-in user's token, reusing a cached one until
// shortly before it expires.
type Identity struct {
	provider Provider
	early    time.Duration

	mu     sync.Mutex
	cached oauth2.TokenSource
}

func NewIdentity(provider Provider, earlyExpiry time.Duration) *Identity {
	return &Identity{provider: provider, early: earlyExpiry}
}

// Token returns a usable token. forceRefresh skips the cache and always asks
// the provider, replacing the cached token on success.
func (i *Identity) Token(ctx context.Context, forceRefresh bool) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if forceRefresh || i.cached == nil {
		tok, err := i.provider.FetchToken(ctx)
		if err != nil {
			return "", err
		}
		if tok == nil || tok.AccessToken == "" {
			return "", ErrNoToken
		}
		i.cached = oauth2.ReuseTokenSourceWithExpiry(tok, providerSource{ctx: context.WithoutCancel(ctx), p: i.provider}, i.early)
		return tok.AccessToken, nil
	}

	tok, err := i.cached.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Reset drops the cached token, e.g. on sign-out.
func (i *Identity) Reset() {
	i.mu.Lock()
	i.cached = nil
	i.mu.Unlock()
}

type providerSource struct {
	ctx context.Context
	p   Provider
}

func (s providerSource) Token() (*oauth2.Token, error) {
	tok, err := s.p.FetchToken(s.ctx)
	if err != nil {
		return nil, err
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, ErrNoToken
	}
	return tok, nil
}
