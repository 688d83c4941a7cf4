package app

import (
	"time"
)

// CacheInfo lists the cached documents together with their total size.
func (s Service) CacheInfo() (CacheInfoResult, error) {
	entries, err := s.Store.List()
	if err != nil {
		return CacheInfoResult{}, err
	}
	var total int64
	for _, entry := range entries {
		total += entry.SizeBytes
	}
	return CacheInfoResult{Entries: entries, TotalBytes: total}, nil
}

// CachePurge removes cached documents older than the retention window.
// A zero KeepDays clears the whole cache.
func (s Service) CachePurge(req CachePurgeRequest) (CachePurgeResult, error) {
	entries, err := s.Store.List()
	if err != nil {
		return CachePurgeResult{}, err
	}
	policy := cacheRetentionPolicy(req)
	now := timeNow(s.Clock)
	plan := BuildCachePrunePlan(entries, policy, now)
	if policy.DryRun {
		return CachePurgeResult{
			KeepCount:   len(plan.Keep),
			DeleteCount: len(plan.Delete),
			DryRun:      true,
		}, nil
	}
	var deleted []string
	for _, entry := range plan.Delete {
		if err := s.Store.Delete(entry.Key); err != nil {
			return CachePurgeResult{}, err
		}
		deleted = append(deleted, entry.Key)
	}
	return CachePurgeResult{
		KeepCount:   len(plan.Keep),
		DeleteCount: len(deleted),
		Deleted:     deleted,
		DryRun:      false,
	}, nil
}

func timeNow(clock func() time.Time) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock().UTC()
}
