package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"manifest-diff/internal/ports"
	"manifest-diff/internal/types"
)

// FetchCache retrieves remote documents through a persistent content
// cache keyed by resolved commit. Branch refs re-resolve on every call
// so a moving branch is always read at its current tip; content at a
// fixed commit is immutable and never expires. Concurrent requests for
// the same uncached key share one network fetch.
type FetchCache struct {
	remote ports.RemotePort
	store  ports.CacheStorePort
	now    func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	degraded bool
	overlay  map[string]types.CacheEntry
}

func NewFetchCache(remote ports.RemotePort, store ports.CacheStorePort) *FetchCache {
	return &FetchCache{
		remote:  remote,
		store:   store,
		now:     time.Now,
		overlay: map[string]types.CacheEntry{},
	}
}

func (f *FetchCache) Fetch(ctx context.Context, doc types.DocumentRef, ref types.Ref) (types.FetchResult, error) {
	commit := ref.Value
	if ref.Kind == types.RefKindBranch {
		resolved, err := f.remote.ResolveBranch(ctx, doc.Repo, ref.Value)
		if err != nil {
			return types.FetchResult{}, err
		}
		log.Ctx(ctx).Debug().
			Str("repo", doc.Repo).
			Str("branch", ref.Value).
			Str("commit", resolved).
			Msg("branch resolved")
		commit = resolved
	}

	key := cacheKey(doc, commit)
	value, err, _ := f.group.Do(key, func() (any, error) {
		if entry, ok := f.lookup(ctx, key); ok {
			log.Ctx(ctx).Debug().Str("repo", doc.Repo).Str("commit", commit).Msg("cache hit")
			return types.FetchResult{Content: entry.Content, ResolvedCommit: commit, CacheHit: true}, nil
		}
		content, err := f.remote.FetchContent(ctx, doc.Repo, commit, doc.Path)
		if err != nil {
			return nil, err
		}
		f.persist(ctx, key, types.CacheEntry{
			Content:        content,
			FetchedAt:      f.now().UTC(),
			ResolvedCommit: commit,
			Repository:     doc.Repo,
			Path:           doc.Path,
			Ref:            ref.Value,
		})
		return types.FetchResult{Content: content, ResolvedCommit: commit}, nil
	})
	if err != nil {
		return types.FetchResult{}, err
	}
	return value.(types.FetchResult), nil
}

func (f *FetchCache) lookup(ctx context.Context, key string) (types.CacheEntry, bool) {
	entry, ok, err := f.store.Get(key)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		return entry, true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok = f.overlay[key]
	return entry, ok
}

// persist writes through to the store. A write failure is non-fatal:
// the entry is kept in the in-process overlay and all later writes stay
// in memory for the remainder of the run.
func (f *FetchCache) persist(ctx context.Context, key string, entry types.CacheEntry) {
	f.mu.Lock()
	degraded := f.degraded
	f.mu.Unlock()

	if !degraded {
		err := f.store.Put(key, entry)
		if err == nil {
			return
		}
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache write failed; continuing in-memory")
	}

	f.mu.Lock()
	f.degraded = true
	f.overlay[key] = entry
	f.mu.Unlock()
}

// cacheKey derives the stable store key for one document revision.
func cacheKey(doc types.DocumentRef, commit string) string {
	hasher := xxhash.New()
	_, _ = hasher.WriteString(doc.Repo)
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.WriteString(doc.Path)
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.WriteString(commit)
	return fmt.Sprintf("%016x", hasher.Sum64())
}
