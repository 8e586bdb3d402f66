package session

import (
	"context"
	"testing"
	"time"

	"github.com/USSTM/swagger-analyzer/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	s := NewState("s1")
	s.SetInputs("base.yaml", []byte("openapi: 3.0.0\n"), "pairs.txt", "GET /")
	require.NoError(t, store.Save(ctx, s))

	// later mutation of the caller's copy is not visible
	s.Exchange = "changed"

	loaded, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingTrigger, loaded.Phase)
	assert.Equal(t, []byte("openapi: 3.0.0\n"), loaded.SchemaSource)
	assert.Equal(t, "GET /", loaded.Exchange)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(context.Background(), NewState("s1")))

	now = now.Add(2 * time.Minute)
	_, err := store.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	exerciseStore(t, NewRedisStore(client, time.Hour))

	t.Run("ttl applied", func(t *testing.T) {
		store := NewRedisStore(client, time.Minute)
		require.NoError(t, store.Save(context.Background(), NewState("ttl")))
		assert.True(t, mr.Exists("session:state:ttl"))

		mr.FastForward(2 * time.Minute)
		_, err := store.Get(context.Background(), "ttl")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("corrupt value", func(t *testing.T) {
		require.NoError(t, mr.Set("session:state:bad", "{not json"))
		_, err := NewRedisStore(client, time.Minute).Get(context.Background(), "bad")
		assert.ErrorContains(t, err, "failed to decode session")
	})
}

func TestRedisStore_Container(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	tr := testutil.NewTestRedis(t)
	t.Cleanup(tr.Close)
	tr.Cleanup(t)

	exerciseStore(t, NewRedisStore(tr.Client, time.Hour))
}
