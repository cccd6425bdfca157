package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/pfopt/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	client, err := New(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(Disabled(), "test", 5, time.Second)

	allowed, remaining, err := limiter.Allow(context.Background(), "127.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 5, remaining)
}

func TestKeys(t *testing.T) {
	a := RecommendationKey([]byte(`{"seed":42}`))
	b := RecommendationKey([]byte(`{"seed":43}`))

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, RecommendationKey([]byte(`{"seed":42}`)))
	assert.Len(t, a, len("recommendation:")+64)
	assert.Equal(t, "run:abc", RunKey("abc"))
	assert.Equal(t, "marketdata:countries", CountryTableKey())
}

func TestCache_Integration(t *testing.T) {
	if testing.Short() || os.Getenv("REDIS_ENABLED") != "true" {
		t.Skip("REDIS_ENABLED not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx := context.Background()
	client, err := New(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	cache := NewCache(client, "pfopt-test")
	type payload struct {
		Seed uint64 `json:"seed"`
	}

	require.NoError(t, cache.Set(ctx, "roundtrip", payload{Seed: 42}, time.Minute))
	defer cache.Delete(ctx, "roundtrip")

	var got payload
	found, err := cache.Get(ctx, "roundtrip", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(42), got.Seed)

	limiter := NewRateLimiter(client, "pfopt-test", 2, time.Second)
	key := "limiter-" + time.Now().Format(time.RFC3339Nano)
	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, _, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, allowed)
}
