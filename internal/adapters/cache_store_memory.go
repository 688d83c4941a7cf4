package adapters

import (
	"sort"
	"sync"

	"manifest-diff/internal/ports"
	"manifest-diff/internal/types"
)

// MemoryCacheStore is a map-backed store for tests and runs with on-disk
// caching disabled. Entries do not survive the process.
type MemoryCacheStore struct {
	mu      sync.Mutex
	entries map[string]types.CacheEntry
}

func NewMemoryCacheStore() *MemoryCacheStore {
	return &MemoryCacheStore{entries: map[string]types.CacheEntry{}}
}

func (s *MemoryCacheStore) Get(key string) (types.CacheEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	return entry, ok, nil
}

func (s *MemoryCacheStore) Put(key string, entry types.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *MemoryCacheStore) List() ([]types.CacheEntryInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	infos := make([]types.CacheEntryInfo, 0, len(s.entries))
	for key, entry := range s.entries {
		infos = append(infos, types.CacheEntryInfo{
			Key:            key,
			Repository:     entry.Repository,
			Path:           entry.Path,
			Ref:            entry.Ref,
			ResolvedCommit: entry.ResolvedCommit,
			FetchedAt:      entry.FetchedAt,
			SizeBytes:      int64(len(entry.Content)),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Key < infos[j].Key
	})
	return infos, nil
}

func (s *MemoryCacheStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

var _ ports.CacheStorePort = (*MemoryCacheStore)(nil)
