package adapters

import (
	"strings"
	"time"
)

// metaTimeLayouts covers the timestamps a cache sidecar may carry:
// the RFC 3339 forms Put writes plus the Go time.Time default string
// form for sidecars produced by other tooling.
var metaTimeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05",
}

// parseFetchedAt reads a sidecar fetch timestamp. Empty or
// unrecognized values map to the zero time, which marks the entry as
// undated for retention purposes.
func parseFetchedAt(value string) time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}
	}
	for _, layout := range metaTimeLayouts {
		parsed, err := time.Parse(layout, trimmed)
		if err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
