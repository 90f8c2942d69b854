package override

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreUnsetClientIsNotBypassed(t *testing.T) {
	store := NewMemoryStore()

	enabled, err := store.Get(context.Background(), "c1")
	require.NoError(t, err)
	require.False(t, enabled)
}

func TestMemoryStoreSetAndFlip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "c1", true))
	enabled, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	require.True(t, enabled)

	require.NoError(t, store.Set(ctx, "c1", false))
	enabled, err = store.Get(ctx, "c1")
	require.NoError(t, err)
	require.False(t, enabled)
}

func TestMemoryStoreAllReturnsSnapshot(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "c1", true))
	require.NoError(t, store.Set(ctx, "c2", false))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"c1": true, "c2": false}, all)

	// Mutating the snapshot must not touch the store.
	all["c3"] = true
	enabled, err := store.Get(ctx, "c3")
	require.NoError(t, err)
	require.False(t, enabled)
}

// fakeHash is an in-memory hashStore for exercising the Redis-backed store
// without a server.
type fakeHash struct {
	fields map[string]string
}

func newFakeHash() *fakeHash {
	return &fakeHash{fields: make(map[string]string)}
}

func (f *fakeHash) HSet(ctx context.Context, key, field, value string) error {
	f.fields[field] = value
	return nil
}

func (f *fakeHash) HGet(ctx context.Context, key, field string) (string, bool, error) {
	val, ok := f.fields[field]
	return val, ok, nil
}

func (f *fakeHash) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	out := make(map[string]string, len(f.fields))
	for k, v := range f.fields {
		out[k] = v
	}
	return out, nil
}

func TestRedisStoreRoundTrip(t *testing.T) {
	hash := newFakeHash()
	store := NewRedisStore(hash)
	ctx := context.Background()

	enabled, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	require.False(t, enabled)

	require.NoError(t, store.Set(ctx, "c1", true))
	require.Equal(t, "1", hash.fields["c1"])

	enabled, err = store.Get(ctx, "c1")
	require.NoError(t, err)
	require.True(t, enabled)

	require.NoError(t, store.Set(ctx, "c1", false))
	require.Equal(t, "0", hash.fields["c1"])

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"c1": false}, all)
}
