package util

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := NewRedisSessionStore(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, mr
}

func TestRedisSessionStore_SetGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.Set(ctx, "admin:session:products", []byte(`{"mode":"create"}`), time.Minute))

	data, err := store.Get(ctx, "admin:session:products")
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"create"}`, string(data))
}

func TestRedisSessionStore_GetMissingKeyIsNilNil(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	data, err := store.Get(ctx, "admin:session:ghost")

	// Отсутствие ключа - не ошибка
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRedisSessionStore_SetAppliesTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.Set(ctx, "admin:session:products", []byte("{}"), time.Minute))

	// Брошенная форма истекает по TTL
	mr.FastForward(2 * time.Minute)

	data, err := store.Get(ctx, "admin:session:products")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRedisSessionStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.Set(ctx, "admin:session:products", []byte("{}"), time.Minute))
	require.NoError(t, store.Delete(ctx, "admin:session:products"))

	data, err := store.Get(ctx, "admin:session:products")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRedisSessionStore_DeleteMissingKeyIsNoop(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	assert.NoError(t, store.Delete(ctx, "admin:session:ghost"))
}

func TestRedisSessionStore_IncrIsMonotonic(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	first, err := store.Incr(ctx, "admin:session:products:generation")
	require.NoError(t, err)
	second, err := store.Incr(ctx, "admin:session:products:generation")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}

func TestNewRedisSessionStore_UnreachableServer(t *testing.T) {
	_, err := NewRedisSessionStore("localhost:1", "", 0)

	assert.Error(t, err)
}
