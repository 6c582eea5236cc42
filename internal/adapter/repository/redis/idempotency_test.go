package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore_CheckAndSetExisting(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, store.prefix+"key", "cached", time.Minute).Err())

	exists, resp, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "cached", string(resp))
}

func TestIdempotencyStore_CheckAndSetClaimsNewKey(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, resp, err := store.CheckAndSet(ctx, "pending", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Nil(t, resp)

	val, err := client.Get(ctx, store.prefix+"pending").Result()
	require.NoError(t, err)
	assert.Equal(t, pendingMarker, val)

	// A second caller sees the key in flight without a response.
	exists, resp, err = store.CheckAndSet(ctx, "pending", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Nil(t, resp)
}

func TestIdempotencyStore_OnlyOneClaimWins(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			exists, _, err := store.CheckAndSet(ctx, "race", nil, time.Minute)
			if err == nil && !exists {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestIdempotencyStore_UpdateAndRelease(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "complete", []byte("done"), time.Minute))

	val, err := client.Get(ctx, store.prefix+"complete").Result()
	require.NoError(t, err)
	assert.Equal(t, "done", val)
	assert.Equal(t, time.Minute, mr.TTL(store.prefix+"complete"))

	require.NoError(t, store.Release(ctx, "complete"))
	assert.False(t, mr.Exists(store.prefix+"complete"))

	exists, _, err := store.CheckAndSet(ctx, "complete", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)
}
