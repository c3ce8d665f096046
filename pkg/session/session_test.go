package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	return map[string]Store{
		"memory": NewInMemoryStore(),
		"redis":  NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})),
	}
}

func TestStore_CreateGet(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			token, err := store.Create(ctx, Session{UserID: "u1", Username: "alice"}, time.Minute)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			sess, err := store.Get(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, "u1", sess.UserID)
			assert.Equal(t, "alice", sess.Username)
		})
	}
}

func TestStore_UnknownToken(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "bogus")
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			token, err := store.Create(ctx, Session{UserID: "u1"}, time.Minute)
			require.NoError(t, err)
			require.NoError(t, store.Delete(ctx, token))

			_, err = store.Get(ctx, token)
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestStore_TokensAreUnique(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := store.Create(ctx, Session{UserID: "u1"}, time.Minute)
		require.NoError(t, err)
		require.False(t, seen[token])
		seen[token] = true
	}
}

func TestInMemoryStore_Expiry(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	token, err := store.Create(ctx, Session{UserID: "u1"}, -time.Second)
	require.NoError(t, err)

	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
