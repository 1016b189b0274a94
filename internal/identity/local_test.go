package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/devfolio/portfolio-backend/internal/apperror"
	"github.com/devfolio/portfolio-backend/internal/kv"
)

func newTestLocal(t *testing.T) (*Local, *time.Time) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewLocal(LocalOptions{
		Secret:       []byte(strings.Repeat("k", 32)),
		TTL:          time.Hour,
		Username:     "admin",
		PasswordHash: string(hash),
		Email:        "owner@example.com",
	}, kv.NewMemory())
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLocal_LoginAndVerify(t *testing.T) {
	l, _ := newTestLocal(t)
	ctx := context.Background()

	token, issued, err := l.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", issued.Email)

	claims, err := l.Verify(ctx, token, VerifyOptions{CheckRevoked: true})
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.UID)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, issued.TokenID, claims.TokenID)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt))
}

func TestLocal_LoginRejectsBadCredentials(t *testing.T) {
	l, _ := newTestLocal(t)

	_, _, err := l.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, apperror.KindAuthentication, apperror.KindOf(err))

	_, _, err = l.Login(context.Background(), "someone", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocal_VerifyClassifiesFailures(t *testing.T) {
	l, now := newTestLocal(t)
	ctx := context.Background()
	token, _, err := l.Issue("admin", "owner@example.com")
	require.NoError(t, err)

	_, err = l.Verify(ctx, "", VerifyOptions{})
	assert.ErrorIs(t, err, ErrTokenMissing)

	_, err = l.Verify(ctx, "not-a-token", VerifyOptions{})
	assert.ErrorIs(t, err, ErrTokenMalformed)

	other := NewLocal(LocalOptions{Secret: []byte(strings.Repeat("z", 32)), TTL: time.Hour}, kv.NewMemory())
	other.now = l.now
	forged, _, err := other.Issue("admin", "owner@example.com")
	require.NoError(t, err)
	_, err = l.Verify(ctx, forged, VerifyOptions{})
	assert.ErrorIs(t, err, ErrVerificationFailed)

	*now = now.Add(2 * time.Hour)
	_, err = l.Verify(ctx, token, VerifyOptions{})
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, "Token expired. Please sign in again.", apperror.PublicMessage(err))
}

func TestLocal_Revoke(t *testing.T) {
	l, _ := newTestLocal(t)
	ctx := context.Background()

	token, claims, err := l.Issue("admin", "owner@example.com")
	require.NoError(t, err)
	require.NoError(t, l.Revoke(ctx, claims))

	_, err = l.Verify(ctx, token, VerifyOptions{CheckRevoked: true})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// skipping the revocation check trades safety for a round trip
	_, err = l.Verify(ctx, token, VerifyOptions{CheckRevoked: false})
	assert.NoError(t, err)
}

func TestLocal_Refresh(t *testing.T) {
	l, now := newTestLocal(t)
	ctx := context.Background()

	oldToken, oldClaims, err := l.Issue("admin", "owner@example.com")
	require.NoError(t, err)

	*now = now.Add(30 * time.Minute)
	newToken, fresh, err := l.Refresh(ctx, oldClaims)
	require.NoError(t, err)
	assert.NotEqual(t, oldToken, newToken)
	assert.True(t, fresh.ExpiresAt.After(oldClaims.ExpiresAt))

	_, err = l.Verify(ctx, oldToken, VerifyOptions{CheckRevoked: true})
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = l.Verify(ctx, newToken, VerifyOptions{CheckRevoked: true})
	assert.NoError(t, err)
}
