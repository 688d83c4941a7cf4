package types

import "time"

// CacheEntry is one cached remote document, stored under a stable hash
// of (repository, path, resolved commit). Content at a fixed commit is
// immutable, so entries carry no expiry of their own.
type CacheEntry struct {
	Content        []byte
	FetchedAt      time.Time
	ResolvedCommit string
	Repository     string
	Path           string
	Ref            string
}

// FetchResult is what the fetch cache hands back for one document.
type FetchResult struct {
	Content        []byte
	ResolvedCommit string
	CacheHit       bool
}

// CacheEntryInfo describes one stored entry for inspection and pruning.
type CacheEntryInfo struct {
	Key            string
	Repository     string
	Path           string
	Ref            string
	ResolvedCommit string
	FetchedAt      time.Time
	SizeBytes      int64
}

type CacheRetentionPolicy struct {
	KeepDays int
	DryRun   bool
}

type CachePrunePlan struct {
	Keep   []CacheEntryInfo
	Delete []CacheEntryInfo
}
