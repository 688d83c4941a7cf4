package ports

import "manifest-diff/internal/types"

// CacheStorePort persists fetched documents keyed by a stable hash of
// (repository, path, resolved commit). Get reports a miss, not an
// error, for absent or unreadable entries.
type CacheStorePort interface {
	Get(key string) (types.CacheEntry, bool, error)
	Put(key string, entry types.CacheEntry) error
	List() ([]types.CacheEntryInfo, error)
	Delete(key string) error
}
