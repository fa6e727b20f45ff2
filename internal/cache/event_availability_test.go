package cache_test

import (
	"context"
	"log"
	"os"
	"testing"

	"go-event-registration/config"
	"go-event-registration/internal/cache"
	"go-event-registration/internal/database"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRedis *redis.Client

func TestMain(m *testing.M) {
	cfg := config.LoadTestConfig()

	var err error
	testRedis, err = database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Printf("test redis unavailable, skipping cache tests: %v", err)
		os.Exit(0)
	}

	code := m.Run()

	_ = testRedis.Close()
	os.Exit(code)
}

func setupCache(t *testing.T) cache.EventAvailabilityCache {
	t.Helper()

	if err := testRedis.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("Failed to flush redis: %v", err)
	}

	return cache.NewEventAvailabilityCache(testRedis)
}

func TestEventAvailabilityCache_WarmAndGet(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	// 未預熱時讀不到
	_, ok, err := c.GetSeats(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.WarmSeats(ctx, 1, 50))

	seats, ok, err := c.GetSeats(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 50, seats)
}

func TestEventAvailabilityCache_DecrSeats(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	t.Run("decrements a warmed key", func(t *testing.T) {
		require.NoError(t, c.WarmSeats(ctx, 1, 2))

		require.NoError(t, c.DecrSeats(ctx, 1))
		require.NoError(t, c.DecrSeats(ctx, 1))

		seats, ok, err := c.GetSeats(ctx, 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 0, seats)
	})

	t.Run("clamps at zero", func(t *testing.T) {
		require.NoError(t, c.WarmSeats(ctx, 2, 0))

		require.NoError(t, c.DecrSeats(ctx, 2))

		seats, _, err := c.GetSeats(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 0, seats)
	})

	t.Run("ignores missing key", func(t *testing.T) {
		require.NoError(t, c.DecrSeats(ctx, 99))

		_, ok, err := c.GetSeats(ctx, 99)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestEventAvailabilityCache_IncrSeats(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	t.Run("increments a warmed key", func(t *testing.T) {
		require.NoError(t, c.WarmSeats(ctx, 1, 3))

		require.NoError(t, c.IncrSeats(ctx, 1))

		seats, _, err := c.GetSeats(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 4, seats)
	})

	t.Run("does not create a missing key", func(t *testing.T) {
		require.NoError(t, c.IncrSeats(ctx, 99))

		_, ok, err := c.GetSeats(ctx, 99)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestEventAvailabilityCache_Invalidate(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.WarmSeats(ctx, 1, 10))
	require.NoError(t, c.Invalidate(ctx, 1))

	_, ok, err := c.GetSeats(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	// 對不存在的 key 失效也不報錯
	require.NoError(t, c.Invalidate(ctx, 42))
}
