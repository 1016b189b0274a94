package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/devfolio/portfolio-backend/internal/kv"
)

// bound for a provider call shared by coalesced callers
const sharedVerifyTimeout = 10 * time.Second

// CachingVerifier remembers successful verifications made without revocation
// checking for at most ttl (never past the token's own expiry). Revocation
// checked verifications always go to the provider. Concurrent verifications
// of one token share a single provider call.
type CachingVerifier struct {
	next  Verifier
	cache kv.Store
	ttl   time.Duration
	log   *zap.Logger
	group singleflight.Group
	now   func() time.Time
}

func NewCachingVerifier(next Verifier, cache kv.Store, ttl time.Duration, log *zap.Logger) *CachingVerifier {
	return &CachingVerifier{next: next, cache: cache, ttl: ttl, log: log, now: time.Now}
}

func (c *CachingVerifier) Verify(ctx context.Context, token string, opts VerifyOptions) (*Claims, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}
	if opts.CheckRevoked {
		return c.next.Verify(ctx, token, opts)
	}
	key := cacheKey(token)

	if claims, ok := c.lookup(ctx, key); ok {
		return claims, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		vctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedVerifyTimeout)
		defer cancel()

		claims, err := c.next.Verify(vctx, token, opts)
		if err != nil {
			return nil, err
		}
		c.store(vctx, key, claims)
		return claims, nil
	})

	select {
	case <-ctx.Done():
		return nil, withCause(ErrVerificationFailed, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		claims := *res.Val.(*Claims)
		return &claims, nil
	}
}

// Forget drops any cached verification of token, e.g. on sign-out.
func (c *CachingVerifier) Forget(ctx context.Context, token string) {
	if err := c.cache.Delete(ctx, cacheKey(token)); err != nil {
		c.log.Warn("verify cache delete failed", zap.Error(err))
	}
}

func (c *CachingVerifier) lookup(ctx context.Context, key string) (*Claims, bool) {
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("verify cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var claims Claims
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, false
	}
	if !c.now().Before(claims.ExpiresAt) {
		return nil, false
	}
	return &claims, true
}

func (c *CachingVerifier) store(ctx context.Context, key string, claims *Claims) {
	ttl := c.ttl
	if left := claims.ExpiresAt.Sub(c.now()); left < ttl {
		ttl = left
	}
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(claims)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, ttl); err != nil {
		c.log.Warn("verify cache write failed", zap.Error(err))
	}
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "verify:" + hex.EncodeToString(sum[:])
}
