package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest-diff/internal/adapters"
	"manifest-diff/internal/types"
)

func newPopulatedStore(t *testing.T, now time.Time) *adapters.MemoryCacheStore {
	t.Helper()
	store := adapters.NewMemoryCacheStore()
	require.NoError(t, store.Put("aaa-fresh", types.CacheEntry{
		Content:        []byte("fresh"),
		FetchedAt:      now.AddDate(0, 0, -2),
		ResolvedCommit: "c1",
	}))
	require.NoError(t, store.Put("bbb-stale", types.CacheEntry{
		Content:        []byte("stale-doc"),
		FetchedAt:      now.AddDate(0, 0, -30),
		ResolvedCommit: "c2",
	}))
	require.NoError(t, store.Put("ccc-undated", types.CacheEntry{
		Content:        []byte("old"),
		ResolvedCommit: "c3",
	}))
	return store
}

func TestCacheInfoTotals(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	service := NewService(newCompareRemote(), newPopulatedStore(t, now))

	result, err := service.CacheInfo()
	require.NoError(t, err)
	require.Len(t, result.Entries, 3)
	assert.Equal(t, "aaa-fresh", result.Entries[0].Key)
	assert.Equal(t, "bbb-stale", result.Entries[1].Key)
	assert.Equal(t, int64(len("fresh")+len("stale-doc")+len("old")), result.TotalBytes)
}

func TestCachePurgeDryRun(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := newPopulatedStore(t, now)
	service := NewService(newCompareRemote(), store)
	service.Clock = func() time.Time { return now }

	result, err := service.CachePurge(CachePurgeRequest{KeepDays: 7, DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.KeepCount)
	assert.Equal(t, 2, result.DeleteCount)
	assert.Empty(t, result.Deleted)

	infos, err := store.List()
	require.NoError(t, err)
	assert.Len(t, infos, 3, "dry run leaves the store untouched")
}

func TestCachePurgeDeletesStaleEntries(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := newPopulatedStore(t, now)
	service := NewService(newCompareRemote(), store)
	service.Clock = func() time.Time { return now }

	result, err := service.CachePurge(CachePurgeRequest{KeepDays: 7})
	require.NoError(t, err)
	assert.False(t, result.DryRun)
	assert.Equal(t, 1, result.KeepCount)
	assert.Equal(t, 2, result.DeleteCount)
	require.ElementsMatch(t, []string{"bbb-stale", "ccc-undated"}, result.Deleted)

	infos, err := store.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "aaa-fresh", infos[0].Key)
}

func TestCachePurgeEverything(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := newPopulatedStore(t, now)
	service := NewService(newCompareRemote(), store)
	service.Clock = func() time.Time { return now }

	result, err := service.CachePurge(CachePurgeRequest{KeepDays: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, result.KeepCount)
	assert.Equal(t, 3, result.DeleteCount)

	infos, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, infos)
}
