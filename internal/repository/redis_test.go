package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewRedisClient(context.Background(), RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestRedisHistoryStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	store := NewRedisHistoryStore(client, "", 0, NewCodec(nil), zap.NewNop())

	entries, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, store.Save(ctx, "user-1", sampleEntries(4)))
	assert.True(t, mr.Exists("ayni_analysis_history:user-1"))

	loaded, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, sampleEntries(4), loaded)

	require.NoError(t, store.Clear(ctx, "user-1"))
	assert.False(t, mr.Exists("ayni_analysis_history:user-1"))
}

func TestRedisHistoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	store := NewRedisHistoryStore(client, "wellness", time.Hour, NewCodec(nil), zap.NewNop())

	require.NoError(t, store.Save(ctx, "user-1", sampleEntries(1)))
	assert.Equal(t, time.Hour, mr.TTL("wellness:user-1"))

	mr.FastForward(2 * time.Hour)
	loaded, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestRedisHistoryStore_Encrypted(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	store := NewRedisHistoryStore(client, "", 0, NewCodec(testEncryptor(t)), zap.NewNop())

	require.NoError(t, store.Save(ctx, "user-1", sampleEntries(2)))

	raw, err := mr.Get("ayni_analysis_history:user-1")
	require.NoError(t, err)
	assert.NotContains(t, raw, "Mild fever")

	loaded, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestRedisHistoryStore_ConnectionFailure(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	store := NewRedisHistoryStore(client, "", 0, NewCodec(nil), zap.NewNop())

	mr.Close()

	err := store.Save(ctx, "user-1", sampleEntries(1))
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "save", storageErr.Op)

	_, err = store.Load(ctx, "user-1")
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "load", storageErr.Op)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient(context.Background(), RedisOptions{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
