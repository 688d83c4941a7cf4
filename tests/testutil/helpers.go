// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// ReadFixture loads a manifest document from the repository's fixtures
// directory.
func ReadFixture(t *testing.T, name string) []byte {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(RepoRoot(t), "fixtures", name))
	require.NoError(t, err)
	return content
}

// CompareGolden checks actual output against the committed golden file,
// writing the golden on first run so it can be committed.
func CompareGolden(t *testing.T, goldenPath string, actual []byte) {
	t.Helper()
	if _, err := os.Stat(goldenPath); os.IsNotExist(err) {
		require.NoError(t, os.MkdirAll(filepath.Dir(goldenPath), 0o755))
		require.NoError(t, os.WriteFile(goldenPath, actual, 0o644))
		t.Logf("golden file written: %s (commit it)", goldenPath)
		return
	}
	expected, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	require.Equal(t, string(expected), string(actual),
		"golden mismatch for %s -- delete it and re-run to regenerate", filepath.Base(goldenPath))
}
