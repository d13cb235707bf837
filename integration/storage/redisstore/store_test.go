package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/storefront/core/storage"
	"github.com/bookhaven/storefront/integration/storage/redisstore"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("round trip with prefix", func(t *testing.T) {
		t.Parallel()
		mr, client := setupTestRedis(t)
		st, err := redisstore.New(client, redisstore.WithPrefix("sf"))
		require.NoError(t, err)

		visitor := storage.Namespace(st, "v1")
		require.NoError(t, visitor.Set(ctx, storage.KeyCart, []byte(`[]`)))

		got, err := visitor.Get(ctx, storage.KeyCart)
		require.NoError(t, err)
		assert.Equal(t, []byte(`[]`), got)
		assert.True(t, mr.Exists("sf:v1:cart"))

		require.NoError(t, visitor.Delete(ctx, storage.KeyCart))
		_, err = visitor.Get(ctx, storage.KeyCart)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, visitor.Delete(ctx, "missing"))
	})

	t.Run("ttl", func(t *testing.T) {
		t.Parallel()
		mr, client := setupTestRedis(t)
		st, err := redisstore.New(client, redisstore.WithTTL(time.Hour))
		require.NoError(t, err)

		require.NoError(t, st.Set(ctx, "k", []byte("v")))
		assert.Equal(t, time.Hour, mr.TTL("k"))

		mr.FastForward(2 * time.Hour)
		_, err = st.Get(ctx, "k")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("json helpers", func(t *testing.T) {
		t.Parallel()
		_, client := setupTestRedis(t)
		st, err := redisstore.New(client)
		require.NoError(t, err)

		require.NoError(t, storage.SetJSON(ctx, st, storage.KeyWishlist, []string{"b1"}))
		got, err := storage.GetJSON[[]string](ctx, st, storage.KeyWishlist)
		require.NoError(t, err)
		assert.Equal(t, []string{"b1"}, got)
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()
		_, err := redisstore.New(nil)
		assert.ErrorIs(t, err, storage.ErrInvalidConfig)

		_, client := setupTestRedis(t)
		st, err := redisstore.New(client)
		require.NoError(t, err)
		_, err = st.Get(ctx, "")
		assert.ErrorIs(t, err, storage.ErrInvalidKey)
	})

	t.Run("server down", func(t *testing.T) {
		t.Parallel()
		mr, client := setupTestRedis(t)
		st, err := redisstore.New(client)
		require.NoError(t, err)
		mr.Close()

		_, err = st.Get(ctx, "k")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrNotFound)
	})
}
