package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRedisDedupeStore(t *testing.T) {
	ctx := context.Background()
	client := newMockRedis()
	store := NewRedisDedupeStore(client, "")
	key := "rec-1:low_stock"

	won, err := store.Claim(ctx, key, 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, won)
	assert.Equal(t, 30*time.Minute, client.ttls[DefaultAlertKeyPrefix+key])

	won, err = store.Claim(ctx, key, 30*time.Minute)
	require.NoError(t, err)
	assert.False(t, won)

	require.NoError(t, store.Release(ctx, key))
	won, err = store.Claim(ctx, key, 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, won)

	assert.NoError(t, store.Close())
}

func TestRedisDedupeStore_Prefix(t *testing.T) {
	client := newMockRedis()
	store := NewRedisDedupeStore(client, "test:")

	_, err := store.Claim(context.Background(), "k", time.Minute)
	require.NoError(t, err)

	_, ok := client.data["test:k"]
	assert.True(t, ok)
}

func TestRedisDedupeStore_Error(t *testing.T) {
	client := newMockRedis()
	client.failSetNX = errRedisDown
	store := NewRedisDedupeStore(client, "")

	_, err := store.Claim(context.Background(), "rec-1:low_stock", time.Minute)
	assert.ErrorIs(t, err, errRedisDown)
}

func TestMemoryDedupeStore_Claim(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	store := NewMemoryDedupeStore()
	store.now = func() time.Time { return now }

	tests := []struct {
		name    string
		advance time.Duration
		key     string
		want    bool
	}{
		{"first claim wins", 0, "rec-1:low_stock", true},
		{"repeat within ttl loses", 0, "rec-1:low_stock", false},
		{"other alert type is independent", 0, "rec-1:out_of_stock", true},
		{"still held just before expiry", 59 * time.Minute, "rec-1:low_stock", false},
		{"claimable again at expiry", time.Minute, "rec-1:low_stock", true},
	}
	for _, tt := range tests {
		now = now.Add(tt.advance)
		won, err := store.Claim(ctx, tt.key, time.Hour)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, won, tt.name)
	}
}

func TestMemoryDedupeStore_Release(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDedupeStore()

	_, _ = store.Claim(ctx, "k", time.Hour)
	require.NoError(t, store.Release(ctx, "k"))
	require.NoError(t, store.Release(ctx, "never-claimed"))

	won, err := store.Claim(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, won)
}

func TestMemoryDedupeStore_PrunesExpiredClaims(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	store := NewMemoryDedupeStore()
	store.now = func() time.Time { return now }

	for i := range minPruneSize - 1 {
		_, _ = store.Claim(ctx, fmt.Sprintf("rec-%d:low_stock", i), time.Minute)
	}
	require.Equal(t, minPruneSize-1, store.Len())

	now = now.Add(2 * time.Minute)
	_, _ = store.Claim(ctx, "fresh", time.Hour)

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, minPruneSize, store.pruneAt)
}

func TestMemoryDedupeStore_ConcurrentClaims(t *testing.T) {
	store := NewMemoryDedupeStore()
	ctx := context.Background()

	var winners atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := store.Claim(ctx, "rec-9:low_stock", time.Hour); err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestNewAlertDedupeStore_WithoutRedis(t *testing.T) {
	store := NewAlertDedupeStore(nil, zaptest.NewLogger(t))
	defer store.Close()

	_, ok := store.(*MemoryDedupeStore)
	assert.True(t, ok)
}
