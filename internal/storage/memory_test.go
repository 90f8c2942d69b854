package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStorePurgeKeepsBoundaryScore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.AddScored(ctx, "k", 100, "a"))
	require.NoError(t, store.AddScored(ctx, "k", 200, "b"))
	require.NoError(t, store.AddScored(ctx, "k", 300, "c"))

	// The purge is exclusive: a score equal to the cutoff survives.
	require.NoError(t, store.PurgeOlderThan(ctx, "k", 200))

	entries, err := store.RangeWithScores(ctx, "k", 0, -1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "b", entries[0].Member)
	require.Equal(t, "c", entries[1].Member)
}

func TestMemoryStoreRangeNegativeIndexes(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	for i, member := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.AddScored(ctx, "k", int64(i*100), member))
	}

	entries, err := store.RangeWithScores(ctx, "k", 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a", entries[0].Member)

	entries, err = store.RangeWithScores(ctx, "k", -2, -1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "c", entries[0].Member)
	require.Equal(t, "d", entries[1].Member)

	entries, err = store.RangeWithScores(ctx, "k", 10, 20)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestMemoryStoreKeepsArrivalOrderForEqualScores(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.AddScored(ctx, "k", 100, "first"))
	require.NoError(t, store.AddScored(ctx, "k", 100, "second"))

	entries, err := store.RangeWithScores(ctx, "k", 0, -1)
	require.NoError(t, err)
	require.Equal(t, "first", entries[0].Member)
	require.Equal(t, "second", entries[1].Member)
}

func TestMemoryStoreExpiryDropsKey(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.AddScored(ctx, "k", 100, "a"))
	require.NoError(t, store.SetExpiry(ctx, "k", 10*time.Millisecond))

	time.Sleep(20 * time.Millisecond)

	count, err := store.Count(ctx, "k")
	require.NoError(t, err)
	require.Zero(t, count, "expired key reads as empty")
}

func TestMemoryStoreMissingKey(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	count, err := store.Count(ctx, "missing")
	require.NoError(t, err)
	require.Zero(t, count)

	entries, err := store.RangeWithScores(ctx, "missing", 0, -1)
	require.NoError(t, err)
	require.Empty(t, entries)

	require.NoError(t, store.PurgeOlderThan(ctx, "missing", 100))
	require.NoError(t, store.SetExpiry(ctx, "missing", time.Second))
}

func TestMemoryStoreCloseIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestStoreErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := &StoreError{Op: "count", Err: cause}

	require.ErrorIs(t, err, cause)
	require.True(t, IsStoreError(err))
	require.True(t, IsStoreError(errors.Join(errors.New("outer"), err)))
	require.False(t, IsStoreError(cause))
	require.Contains(t, err.Error(), "count")
}
