package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStore_CreateAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	session, err := store.Create(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	assert.Equal(t, uint(42), session.UserID)

	loaded, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, loaded.UserID)
	assert.Equal(t, session.ID, loaded.ID)
}

func TestRedisStore_GetUnknown(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "no-such-session")
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	_, err = store.Get(context.Background(), "")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestRedisStore_Destroy(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	session, err := store.Create(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, session.ID))

	_, err = store.Get(ctx, session.ID)
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	// Destroying an already-destroyed session reports not found.
	err = store.Destroy(ctx, session.ID)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestRedisStore_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	session, err := store.Create(ctx, 9)
	require.NoError(t, err)

	mr.FastForward(time.Hour + time.Second)

	_, err = store.Get(ctx, session.ID)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}
