package identity_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devfolio/portfolio-backend/internal/identity"
	"github.com/devfolio/portfolio-backend/internal/identity/identitytest"
	"github.com/devfolio/portfolio-backend/internal/kv"
)

func TestCachingVerifier_ReusesVerification(t *testing.T) {
	fake := identitytest.NewVerifier().Allow("tok", "owner@example.com")
	v := identity.NewCachingVerifier(fake, kv.NewMemory(), time.Minute, zap.NewNop())
	ctx := context.Background()
	opts := identity.VerifyOptions{CheckRevoked: false}

	for i := 0; i < 3; i++ {
		claims, err := v.Verify(ctx, "tok", opts)
		require.NoError(t, err)
		assert.Equal(t, "owner@example.com", claims.Email)
	}
	assert.Equal(t, 1, fake.Calls())

	v.Forget(ctx, "tok")
	_, err := v.Verify(ctx, "tok", opts)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.Calls())
}

func TestCachingVerifier_RevocationCheckAlwaysReachesProvider(t *testing.T) {
	fake := identitytest.NewVerifier().Allow("tok", "owner@example.com")
	v := identity.NewCachingVerifier(fake, kv.NewMemory(), time.Minute, zap.NewNop())
	ctx := context.Background()

	_, err := v.Verify(ctx, "tok", identity.VerifyOptions{CheckRevoked: false})
	require.NoError(t, err)
	_, err = v.Verify(ctx, "tok", identity.VerifyOptions{CheckRevoked: true})
	require.NoError(t, err)
	assert.Equal(t, 2, fake.Calls())
	assert.True(t, fake.LastOptions().CheckRevoked)

	// a token revoked after it was cached is rejected once revocation is checked
	fake.Fail("tok", identity.ErrTokenRevoked)
	_, err = v.Verify(ctx, "tok", identity.VerifyOptions{CheckRevoked: true})
	assert.ErrorIs(t, err, identity.ErrTokenRevoked)
	assert.Equal(t, 3, fake.Calls())
}

func TestCachingVerifier_DoesNotCacheFailures(t *testing.T) {
	fake := identitytest.NewVerifier().Fail("expired", identity.ErrTokenExpired)
	v := identity.NewCachingVerifier(fake, kv.NewMemory(), time.Minute, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := v.Verify(context.Background(), "expired", identity.VerifyOptions{})
		assert.ErrorIs(t, err, identity.ErrTokenExpired)
	}
	assert.Equal(t, 2, fake.Calls())
}

func TestCachingVerifier_ConcurrentCallers(t *testing.T) {
	fake := identitytest.NewVerifier().Allow("tok", "owner@example.com")
	v := identity.NewCachingVerifier(fake, kv.NewMemory(), time.Minute, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claims, err := v.Verify(context.Background(), "tok", identity.VerifyOptions{})
			assert.NoError(t, err)
			assert.Equal(t, "owner@example.com", claims.Email)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, fake.Calls(), 20)
	assert.GreaterOrEqual(t, fake.Calls(), 1)
}

// blockingVerifier holds every call until release is closed or the call's
// context ends.
type blockingVerifier struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func (b *blockingVerifier) Verify(ctx context.Context, token string, _ identity.VerifyOptions) (*identity.Claims, error) {
	b.calls.Add(1)
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
		return &identity.Claims{UID: "uid", Email: "owner@example.com", ExpiresAt: time.Now().Add(time.Hour)}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCachingVerifier_CancelledCallerDoesNotFailOthers(t *testing.T) {
	next := &blockingVerifier{started: make(chan struct{}), release: make(chan struct{})}
	v := identity.NewCachingVerifier(next, kv.NewMemory(), time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := v.Verify(ctx, "tok", identity.VerifyOptions{})
		firstErr <- err
	}()
	<-next.started

	second := make(chan error, 1)
	go func() {
		claims, err := v.Verify(context.Background(), "tok", identity.VerifyOptions{})
		if err == nil && claims.Email != "owner@example.com" {
			err = assert.AnError
		}
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, identity.ErrVerificationFailed)

	close(next.release)
	assert.NoError(t, <-second)
}
