package app

import "manifest-diff/internal/types"

type CompareRequest struct {
	TaqastaRepo      string
	TaqastaPath      string
	TaqastaRef       types.Ref
	CanastaRepo      string
	CanastaRef       types.Ref
	MediaWikiVersion string
	OutputPath       string
}

type CompareResult struct {
	Report           string
	MediaWikiVersion string
	TaqastaCommit    string
	CanastaCommit    string
	Differences      bool
	OutputPath       string
}

type ValidateRequest struct {
	Source           string
	Repo             string
	Path             string
	Ref              types.Ref
	MediaWikiVersion string
}

type ValidateResult struct {
	Source         string
	ResolvedCommit string
	Extensions     int
	Skins          int
	Packages       int
	Repositories   int
}

type CacheInfoResult struct {
	Entries    []types.CacheEntryInfo
	TotalBytes int64
}

type CachePurgeRequest struct {
	KeepDays int
	DryRun   bool
}

type CachePurgeResult struct {
	KeepCount   int
	DeleteCount int
	Deleted     []string
	DryRun      bool
}
