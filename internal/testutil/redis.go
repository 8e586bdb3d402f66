package testutil

import (
	"context"
	"testing"
	"time"

	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestRedis wraps a real Redis server in a container
type TestRedis struct {
	container *redis.RedisContainer
	Client    *rdb.Client
}

// NewTestRedis starts (or reuses) a Redis container
func NewTestRedis(t *testing.T) *TestRedis {
	ctx := context.Background()

	redisContainer, err := redis.Run(ctx,
		"redis:7-alpine",
		testcontainers.CustomizeRequestOption(func(req *testcontainers.GenericContainerRequest) error {
			req.Name = "swagger-analyzer-test-redis"
			req.Reuse = true
			return nil
		}),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("Ready to accept connections").
					WithStartupTimeout(30*time.Second),
				wait.ForListeningPort("6379/tcp").
					WithStartupTimeout(30*time.Second),
			),
		),
	)
	require.NoError(t, err, "Failed to start Redis container")

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err, "Failed to get redis endpoint")

	client := rdb.NewClient(&rdb.Options{Addr: endpoint})
	require.NoError(t, client.Ping(ctx).Err(), "Failed to ping redis")

	return &TestRedis{
		container: redisContainer,
		Client:    client,
	}
}

// Cleanup flushes the database between tests
func (r *TestRedis) Cleanup(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.Client.FlushDB(ctx).Err(); err != nil {
		t.Logf("WARNING: failed to flush Redis between tests: %v", err)
	}
}

func (r *TestRedis) Close() {
	if r.Client != nil {
		r.Client.Close()
	}
}
