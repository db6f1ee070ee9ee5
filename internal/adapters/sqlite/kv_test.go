package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pentopublic/pentopublic-client/internal/adapters/credstore"
	domainauth "github.com/pentopublic/pentopublic-client/internal/domain/auth"
)

func openTestKV(t *testing.T, path string) *KV {
	t.Helper()
	kv, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestKV_PutGetDelete(t *testing.T) {
	kv := openTestKV(t, filepath.Join(t.TempDir(), "credentials.db"))
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, kv.Put(ctx, map[string]string{"b": "3"}))

	got, err := kv.Get(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "3"}, got)

	require.NoError(t, kv.Delete(ctx, "a", "c"))
	got, err = kv.Get(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"b": "3"}, got)
}

func TestKV_EmptyOperations(t *testing.T) {
	kv := openTestKV(t, filepath.Join(t.TempDir(), "credentials.db"))
	ctx := context.Background()

	assert.NoError(t, kv.Put(ctx, nil))
	assert.NoError(t, kv.Delete(ctx))
	got, err := kv.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestKV_BacksCredentialStoreAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.db")
	ctx := context.Background()
	rec := domainauth.SessionRecord{
		Token:    "t1",
		Identity: domainauth.Identity{ID: "7", UserName: "alice", Role: domainauth.RoleAuthor},
	}

	kv := openTestKV(t, path)
	require.NoError(t, credstore.New(credstore.Options{KV: kv}).Save(ctx, rec))
	require.NoError(t, kv.Close())

	reopened := openTestKV(t, path)
	store := credstore.New(credstore.Options{KV: reopened})
	got, ok := store.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, rec, got)

	require.NoError(t, store.Clear(ctx))
	_, ok = store.Load(ctx)
	assert.False(t, ok)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
}
