package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/pribylovaa/go-shop-client/internal/storage"
)

// Интеграционные тесты redis-хранилища поднимают настоящий Redis через testcontainers-go.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/redis -v -count=1

func startRedis(t *testing.T) string {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	return "redis://" + endpoint
}

func TestNew_BadURL(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), "not-a-url", "", 0)
	require.Error(t, err)
}

func TestNewWithClient_Defaults(t *testing.T) {
	t.Parallel()

	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewWithClient(rdb, "", -time.Second)
	require.Equal(t, "shop:session:access", s.key("access"))
	require.Zero(t, s.ttl)
	require.NoError(t, s.Close())

	require.ErrorIs(t, s.Set(context.Background(), "", "x"), storage.ErrEmptyKey)
}

func TestStore_Integration_RoundTrip(t *testing.T) {
	url := startRedis(t)
	ctx := context.Background()

	s, err := New(ctx, url, "test:", time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, ok, err := s.Get(ctx, "access")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "access", "AAA"))
	require.NoError(t, s.Set(ctx, "access", "BBB"))

	v, ok, err := s.Get(ctx, "access")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "BBB", v)

	// Ключ живёт с TTL и префиксом.
	ttl, err := s.rdb.TTL(ctx, "test:access").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	require.NoError(t, s.Delete(ctx, "access"))
	_, ok, err = s.Get(ctx, "access")
	require.NoError(t, err)
	require.False(t, ok)
}
