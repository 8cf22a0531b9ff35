package redis_client

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	server := miniredis.RunT(t)
	t.Setenv("SEGMENTER_REDIS_ADDRESS", server.Addr())
	t.Setenv("SEGMENTER_REDIS_DATABASE", "0")

	require.NoError(t, Connect())
	assert.NotNil(t, Client)
	assert.NotNil(t, QueueConnection)

	t.Setenv("SEGMENTER_REDIS_DATABASE", "one")
	assert.Error(t, Connect())
}

func TestRunLock(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	ctx := context.Background()

	first := NewRunLock(client, "segmenter:test-lock", "first", time.Minute)
	second := NewRunLock(client, "segmenter:test-lock", "second", time.Minute)

	acquired, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, second.Release(ctx))
	assert.True(t, server.Exists("segmenter:test-lock"), "release by another holder keeps the lock")

	require.NoError(t, first.Release(ctx))
	assert.False(t, server.Exists("segmenter:test-lock"))

	acquired, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, acquired)

	server.FastForward(2 * time.Minute)
	acquired, err = first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, acquired, "lock expires after its ttl")

	require.NoError(t, second.Release(ctx))
	value, err := server.Get("segmenter:test-lock")
	require.NoError(t, err)
	assert.Equal(t, "first", value, "an expired holder cannot release the new holder's lock")
}

func TestStopsInvalidator(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	ctx := context.Background()

	stopsCache := NewStopsCache(client)
	require.NoError(t, stopsCache.Set(ctx, StopsCacheKey(7, false), "[]"))
	require.NoError(t, stopsCache.Set(ctx, StopsCacheKey(7, true), "[]"))
	require.NoError(t, stopsCache.Set(ctx, StopsCacheKey(8, false), "[]"))

	invalidator := &StopsInvalidator{Cache: stopsCache}
	require.NoError(t, invalidator.InvalidateRoutes(ctx, []int64{7, 9}))

	assert.False(t, server.Exists(StopsCacheKey(7, false)))
	assert.False(t, server.Exists(StopsCacheKey(7, true)))
	assert.True(t, server.Exists(StopsCacheKey(8, false)))
}
