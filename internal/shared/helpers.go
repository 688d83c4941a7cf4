// Package shared provides common utility functions used across multiple
// packages in the manifest-diff codebase.
package shared

import (
	"fmt"
	"strings"
)

// NormalizeRepositoryURL strips a trailing slash and then a trailing
// ".git" suffix so that equivalent clone URLs compare equal.
func NormalizeRepositoryURL(url string) string {
	trimmed := strings.TrimSpace(url)
	trimmed = strings.TrimSuffix(trimmed, "/")
	return strings.TrimSuffix(trimmed, ".git")
}

// NormalizeComposerName lowercases a composer package or extension name;
// composer matching is case-insensitive.
func NormalizeComposerName(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// HTTPStatusErrorWithBody creates a formatted error that includes the
// response body for non-2xx HTTP responses.
func HTTPStatusErrorWithBody(status int, url string, body string) error {
	return fmt.Errorf("status=%d url=%s response=%s", status, url, body)
}
