package adapters

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"manifest-diff/internal/ports"
	"manifest-diff/internal/types"
)

// FileCacheStore keeps one raw content file plus one metadata sidecar
// per key under a flat directory. The directory is created lazily on
// the first write. Entries that cannot be read back cleanly count as
// misses and are removed so the next fetch refills them.
type FileCacheStore struct {
	Dir string
}

const contentSuffix = ".yaml"
const metaSuffix = ".meta.yaml"

func NewFileCacheStore(dir string) *FileCacheStore {
	return &FileCacheStore{Dir: dir}
}

type cacheMetaFile struct {
	Repository     string `yaml:"repository"`
	Path           string `yaml:"path"`
	Ref            string `yaml:"ref"`
	ResolvedCommit string `yaml:"resolved_commit"`
	FetchedAt      string `yaml:"fetched_at"`
}

func (s *FileCacheStore) Get(key string) (types.CacheEntry, bool, error) {
	content, err := os.ReadFile(s.contentPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return types.CacheEntry{}, false, nil
		}
		s.discard(key)
		return types.CacheEntry{}, false, nil
	}
	metaRaw, err := os.ReadFile(s.metaPath(key))
	if err != nil {
		s.discard(key)
		return types.CacheEntry{}, false, nil
	}
	var meta cacheMetaFile
	if err := yaml.Unmarshal(metaRaw, &meta); err != nil || meta.ResolvedCommit == "" {
		s.discard(key)
		return types.CacheEntry{}, false, nil
	}
	return types.CacheEntry{
		Content:        content,
		FetchedAt:      parseFetchedAt(meta.FetchedAt),
		ResolvedCommit: meta.ResolvedCommit,
		Repository:     meta.Repository,
		Path:           meta.Path,
		Ref:            meta.Ref,
	}, true, nil
}

func (s *FileCacheStore) Put(key string, entry types.CacheEntry) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create cache directory").
			WithCause(err)
	}
	meta := cacheMetaFile{
		Repository:     entry.Repository,
		Path:           entry.Path,
		Ref:            entry.Ref,
		ResolvedCommit: entry.ResolvedCommit,
		FetchedAt:      entry.FetchedAt.UTC().Format(time.RFC3339),
	}
	metaRaw, err := yaml.Marshal(meta)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode cache metadata").
			WithCause(err)
	}
	if err := writeFileAtomic(s.contentPath(key), entry.Content); err != nil {
		return err
	}
	if err := writeFileAtomic(s.metaPath(key), metaRaw); err != nil {
		s.discard(key)
		return err
	}
	return nil
}

func (s *FileCacheStore) List() ([]types.CacheEntryInfo, error) {
	dirEntries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read cache directory").
			WithCause(err)
	}
	var infos []types.CacheEntryInfo
	for _, dirEntry := range dirEntries {
		name := dirEntry.Name()
		if dirEntry.IsDir() || !strings.HasSuffix(name, metaSuffix) {
			continue
		}
		key := strings.TrimSuffix(name, metaSuffix)
		metaRaw, err := os.ReadFile(s.metaPath(key))
		if err != nil {
			continue
		}
		var meta cacheMetaFile
		if err := yaml.Unmarshal(metaRaw, &meta); err != nil {
			continue
		}
		info := types.CacheEntryInfo{
			Key:            key,
			Repository:     meta.Repository,
			Path:           meta.Path,
			Ref:            meta.Ref,
			ResolvedCommit: meta.ResolvedCommit,
			FetchedAt:      parseFetchedAt(meta.FetchedAt),
		}
		if stat, err := os.Stat(s.contentPath(key)); err == nil {
			info.SizeBytes = stat.Size()
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Key < infos[j].Key
	})
	return infos, nil
}

func (s *FileCacheStore) Delete(key string) error {
	s.discard(key)
	return nil
}

func (s *FileCacheStore) contentPath(key string) string {
	return filepath.Join(s.Dir, key+contentSuffix)
}

func (s *FileCacheStore) metaPath(key string) string {
	return filepath.Join(s.Dir, key+metaSuffix)
}

func (s *FileCacheStore) discard(key string) {
	_ = os.Remove(s.contentPath(key))
	_ = os.Remove(s.metaPath(key))
}

// writeFileAtomic writes via a temp file in the target directory and
// renames it into place, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".cache-*")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create cache temp file").
			WithCause(err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write cache file").
			WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to close cache temp file").
			WithCause(err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to set cache file permissions").
			WithCause(err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to move cache file into place").
			WithCause(err)
	}
	return nil
}

var _ ports.CacheStorePort = (*FileCacheStore)(nil)
