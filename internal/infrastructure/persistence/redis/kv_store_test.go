package redis

import (
	"context"
	"testing"

	"github.com/alchemorsel/recipebox/internal/ports/outbound"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestKVStore(t *testing.T) (*KVStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewKVStore(client, zap.NewNop()), server
}

func TestKVStore_RoundTrip(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store, server := newTestKVStore(t)

	// Act
	err := store.Set(ctx, "mealPlan", []byte(`{"Monday":{}}`))
	require.NoError(t, err)
	got, err := store.Get(ctx, "mealPlan")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, `{"Monday":{}}`, string(got))
	assert.Zero(t, server.TTL("mealPlan"))
}

func TestKVStore_MissingKey(t *testing.T) {
	store, _ := newTestKVStore(t)

	_, err := store.Get(context.Background(), "recipes")

	assert.ErrorIs(t, err, outbound.ErrKeyNotFound)
}

func TestKVStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, server := newTestKVStore(t)
	require.NoError(t, server.Set("recipes", "[]"))

	require.NoError(t, store.Delete(ctx, "recipes"))

	assert.False(t, server.Exists("recipes"))
	assert.NoError(t, store.Delete(ctx, "recipes"))
}

func TestKVStore_ServerErrorsSurface(t *testing.T) {
	store, server := newTestKVStore(t)
	server.SetError("ERR internal failure")

	_, err := store.Get(context.Background(), "recipes")

	require.Error(t, err)
	assert.NotErrorIs(t, err, outbound.ErrKeyNotFound)
}

func TestKVStore_OOMIsQuotaExceeded(t *testing.T) {
	store, server := newTestKVStore(t)
	server.SetError("OOM command not allowed when used memory > 'maxmemory'")

	err := store.Set(context.Background(), "recipes", []byte("[]"))

	assert.ErrorIs(t, err, outbound.ErrQuotaExceeded)
}
