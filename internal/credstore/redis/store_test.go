package redis_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fireenrich/internal/config"
	credredis "fireenrich/internal/credstore/redis"
)

// Runs against a live Redis when FIREENRICH_TEST_REDIS_ADDR is set.
func newTestStore(t *testing.T) *credredis.Store {
	t.Helper()
	addr := os.Getenv("FIREENRICH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FIREENRICH_TEST_REDIS_ADDR not set")
	}
	s, err := credredis.NewStore(&config.RedisConfig{Addr: addr, KeyPrefix: "fireenrich:test:" + uuid.NewString()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := uuid.New()

	_, ok, err := s.Get(ctx, client, "firecrawl_api_key")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, client, "firecrawl_api_key", "fc-1"))
	require.NoError(t, s.Set(ctx, client, "openai_api_key", "sk-1"))

	v, ok, err := s.Get(ctx, client, "firecrawl_api_key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fc-1", v)

	require.NoError(t, s.Delete(ctx, client, "firecrawl_api_key"))
	_, ok, _ = s.Get(ctx, client, "firecrawl_api_key")
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, client))
	_, ok, _ = s.Get(ctx, client, "openai_api_key")
	assert.False(t, ok)
}

func TestNewStore_Unreachable(t *testing.T) {
	_, err := credredis.NewStore(&config.RedisConfig{Addr: "127.0.0.1:1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}
