package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+s.Addr(), "ts:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, s
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	t.Run("ping", func(t *testing.T) {
		store, _ := setupTestRedis(t)
		assert.NoError(t, store.Ping(ctx))
	})

	t.Run("save and load use the prefix", func(t *testing.T) {
		store, mr := setupTestRedis(t)
		require.NoError(t, store.Save(ctx, KeyDocuments, []byte(`[1,2]`)))

		raw, err := mr.Get("ts:" + KeyDocuments)
		require.NoError(t, err)
		assert.Equal(t, `[1,2]`, raw)

		got, err := store.Load(ctx, KeyDocuments)
		require.NoError(t, err)
		assert.Equal(t, `[1,2]`, string(got))
	})

	t.Run("blobs do not expire", func(t *testing.T) {
		store, mr := setupTestRedis(t)
		require.NoError(t, store.Save(ctx, KeyProjects, []byte(`[]`)))
		assert.Zero(t, mr.TTL("ts:"+KeyProjects))
	})

	t.Run("missing key is absent", func(t *testing.T) {
		store, _ := setupTestRedis(t)
		_, err := store.Load(ctx, "missing")
		assert.ErrorIs(t, err, ErrAbsent)
	})

	t.Run("delete", func(t *testing.T) {
		store, _ := setupTestRedis(t)
		require.NoError(t, store.Save(ctx, KeyChat, []byte(`{}`)))
		require.NoError(t, store.Delete(ctx, KeyChat))
		_, err := store.Load(ctx, KeyChat)
		assert.ErrorIs(t, err, ErrAbsent)
		assert.NoError(t, store.Delete(ctx, KeyChat))
	})

	t.Run("unreachable server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		_, err := NewRedisStore("redis://"+addr, "")
		assert.Error(t, err)
	})
}
