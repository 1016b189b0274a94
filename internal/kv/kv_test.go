package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_SetGetExpire(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedis(client, "portfolio:")
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "revoked:abc", []byte("1"), time.Minute))
	assert.True(t, mr.Exists("portfolio:revoked:abc"))

	v, ok, err := store.Get(ctx, "revoked:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	require.NoError(t, store.Set(ctx, "gone", []byte("1"), time.Minute))
	require.NoError(t, store.Delete(ctx, "gone"))
	assert.False(t, mr.Exists("portfolio:gone"))

	mr.FastForward(2 * time.Minute)
	_, ok, err = store.Get(ctx, "revoked:abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_RejectsNonPositiveTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	assert.ErrorIs(t, store.Set(context.Background(), "k", nil, 0), ErrInvalidTTL)
}

func TestMemory_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "a", []byte("x"), time.Second))

	v, ok, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("x"), v)

	now = now.Add(time.Second)
	_, ok, err = m.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}
