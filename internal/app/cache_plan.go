package app

import (
	"time"

	"manifest-diff/internal/types"
)

// BuildCachePrunePlan splits cache entries into keep and delete sets
// under the retention policy. Entries fetched within the last KeepDays
// days survive; with KeepDays at zero nothing does.
func BuildCachePrunePlan(entries []types.CacheEntryInfo, policy types.CacheRetentionPolicy, now time.Time) types.CachePrunePlan {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	keepDays := policy.KeepDays
	if keepDays < 0 {
		keepDays = 0
	}

	var keep []types.CacheEntryInfo
	var del []types.CacheEntryInfo
	if keepDays == 0 {
		del = append(del, entries...)
		return types.CachePrunePlan{Keep: keep, Delete: del}
	}

	cutoff := now.AddDate(0, 0, -keepDays)
	for _, entry := range entries {
		if !entry.FetchedAt.IsZero() && !entry.FetchedAt.Before(cutoff) {
			keep = append(keep, entry)
		} else {
			del = append(del, entry)
		}
	}
	return types.CachePrunePlan{Keep: keep, Delete: del}
}

func cacheRetentionPolicy(req CachePurgeRequest) types.CacheRetentionPolicy {
	return types.CacheRetentionPolicy{
		KeepDays: req.KeepDays,
		DryRun:   req.DryRun,
	}
}
