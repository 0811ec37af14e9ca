package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKV runs the substrate contract every backend must satisfy.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, KeyUsers)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, KeyUsers, `[{"id":"user_1"}]`))
	got, err := kv.Get(ctx, KeyUsers)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"user_1"}]`, got)

	// Set overwrites in place.
	require.NoError(t, kv.Set(ctx, KeyUsers, `[]`))
	got, err = kv.Get(ctx, KeyUsers)
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)

	// Keys are independent.
	require.NoError(t, kv.Set(ctx, KeyTags, `["其他"]`))
	got, err = kv.Get(ctx, KeyTags)
	require.NoError(t, err)
	assert.Equal(t, `["其他"]`, got)

	require.NoError(t, kv.Remove(ctx, KeyUsers))
	_, err = kv.Get(ctx, KeyUsers)
	assert.ErrorIs(t, err, ErrNotFound)

	// Removing an absent key is not an error.
	require.NoError(t, kv.Remove(ctx, "classwall:never-set"))
}

func TestMemoryBackend(t *testing.T) {
	t.Parallel()
	exerciseKV(t, NewMemory())
}

func TestSQLiteBackend(t *testing.T) {
	t.Parallel()
	kv, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	exerciseKV(t, kv)
}

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	kv, err := NewRedis(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	exerciseKV(t, kv)
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	t.Parallel()
	_, err := NewRedis(context.Background(), "redis://bad url with spaces")
	assert.Error(t, err)
}

func TestNewRedisAcceptsURLForm(t *testing.T) {
	mr := miniredis.RunT(t)
	kv, err := NewRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	require.NoError(t, kv.Set(context.Background(), KeySettings, `{}`))
	assert.True(t, mr.Exists(KeySettings))
}
