package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pentopublic/pentopublic-client/internal/adapters/credstore"
	domainauth "github.com/pentopublic/pentopublic-client/internal/domain/auth"
	"github.com/pentopublic/pentopublic-client/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func testPrefix() string { return "test:" + uuid.NewString() + ":" }

func TestKV_PutGetDelete(t *testing.T) {
	client := setupTestRedis(t)

	kv := NewKV(client, KVOptions{Prefix: testPrefix()})
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, map[string]string{"a": "1", "b": "2"}))

	got, err := kv.Get(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got)

	require.NoError(t, kv.Delete(ctx, "a", "b"))
	got, err = kv.Get(ctx, "a", "b")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestKV_PrefixIsApplied(t *testing.T) {
	client := setupTestRedis(t)

	prefix := testPrefix()
	kv := NewKV(client, KVOptions{Prefix: prefix})
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, map[string]string{"authToken": "t1"}))
	defer client.Del(ctx, prefix+"authToken")

	v, err := client.Get(ctx, prefix+"authToken").Result()
	require.NoError(t, err)
	assert.Equal(t, "t1", v)
}

func TestKV_TTL(t *testing.T) {
	client := setupTestRedis(t)

	prefix := testPrefix()
	kv := NewKV(client, KVOptions{Prefix: prefix, TTL: time.Minute})
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, map[string]string{"authToken": "t1"}))
	defer client.Del(ctx, prefix+"authToken")

	ttl, err := client.TTL(ctx, prefix+"authToken").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestKV_BacksCredentialStore(t *testing.T) {
	client := setupTestRedis(t)

	store := credstore.New(credstore.Options{KV: NewKV(client, KVOptions{Prefix: testPrefix()})})
	ctx := context.Background()

	rec := domainauth.SessionRecord{
		Token:    "t1",
		Identity: domainauth.Identity{ID: "7", UserName: "alice", Role: domainauth.RoleAuthor},
	}
	require.NoError(t, store.Save(ctx, rec))

	got, ok := store.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, rec, got)

	require.NoError(t, store.Clear(ctx))
	_, ok = store.Load(ctx)
	assert.False(t, ok)
}

func TestKV_EmptyOperations(t *testing.T) {
	kv := NewKV(nil, KVOptions{})
	ctx := context.Background()

	assert.NoError(t, kv.Put(ctx, nil))
	assert.NoError(t, kv.Delete(ctx))
	got, err := kv.Get(ctx)
	assert.NoError(t, err)
	assert.Empty(t, got)
}
