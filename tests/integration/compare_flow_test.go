package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest-diff/internal/adapters"
	"manifest-diff/internal/app"
	"manifest-diff/internal/types"
	"manifest-diff/tests/testutil"
)

const (
	taqastaTip = "1111111111111111111111111111111111111111"
	canastaTip = "2222222222222222222222222222222222222222"
)

// fixtureRemote serves the checked-in manifests as if GitHub were
// answering, counting calls so tests can observe cache behavior.
type fixtureRemote struct {
	mu        sync.Mutex
	branches  map[string]string
	documents map[string]string
	resolves  int
	fetches   int
}

func newFixtureRemote(t *testing.T) *fixtureRemote {
	t.Helper()
	remote := &fixtureRemote{
		branches: map[string]string{
			"WikiTeq/Taqasta@master":                taqastaTip,
			"CanastaWiki/RecommendedRevisions@main": canastaTip,
		},
		documents: map[string]string{},
	}
	remote.documents[docKey("WikiTeq/Taqasta", taqastaTip, "values.yml")] = string(testutil.ReadFixture(t, "taqasta-values.yml"))
	remote.documents[docKey("CanastaWiki/RecommendedRevisions", canastaTip, "1.43.yaml")] = string(testutil.ReadFixture(t, "canasta-1.43.yaml"))
	return remote
}

func docKey(repo string, commit string, path string) string {
	return repo + "@" + commit + "/" + path
}

func (r *fixtureRemote) ResolveBranch(_ context.Context, repo string, branch string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolves++
	commit, ok := r.branches[repo+"@"+branch]
	if !ok {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("reference not found: %s@%s", repo, branch))
	}
	return commit, nil
}

func (r *fixtureRemote) FetchContent(_ context.Context, repo string, commit string, path string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches++
	content, ok := r.documents[docKey(repo, commit, path)]
	if !ok {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("reference not found: %s@%s %s", repo, commit, path))
	}
	return []byte(content), nil
}

func (r *fixtureRemote) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolves, r.fetches
}

func compareRequest(t *testing.T) app.CompareRequest {
	t.Helper()
	return app.CompareRequest{
		TaqastaRef: types.BranchRef("master"),
		CanastaRef: types.BranchRef("main"),
		OutputPath: filepath.Join(t.TempDir(), "report.txt"),
	}
}

func TestCompareFlowPopulatesAndReusesCache(t *testing.T) {
	cacheDir := t.TempDir()
	store := adapters.NewFileCacheStore(cacheDir)
	remote := newFixtureRemote(t)
	service := app.NewService(remote, store)

	req := compareRequest(t)
	first, err := service.Compare(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, "1.43", first.MediaWikiVersion)
	assert.Equal(t, taqastaTip, first.TaqastaCommit)
	assert.Equal(t, canastaTip, first.CanastaCommit)
	assert.True(t, first.Differences)

	written, err := os.ReadFile(req.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, first.Report, string(written))

	resolves, fetches := remote.counts()
	assert.Equal(t, 2, resolves)
	assert.Equal(t, 2, fetches)

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	repos := []string{entries[0].Repository, entries[1].Repository}
	assert.ElementsMatch(t, []string{"WikiTeq/Taqasta", "CanastaWiki/RecommendedRevisions"}, repos)

	// A second run against the same store re-resolves both branches but
	// reads the documents from disk.
	again := app.NewService(remote, adapters.NewFileCacheStore(cacheDir))
	second, err := again.Compare(t.Context(), compareRequest(t))
	require.NoError(t, err)
	assert.Equal(t, first.Report, second.Report)

	resolves, fetches = remote.counts()
	assert.Equal(t, 4, resolves)
	assert.Equal(t, 2, fetches, "cached documents must not be refetched")
}

func TestCompareFlowPurgeForcesRefetch(t *testing.T) {
	cacheDir := t.TempDir()
	remote := newFixtureRemote(t)
	service := app.NewService(remote, adapters.NewFileCacheStore(cacheDir))

	_, err := service.Compare(t.Context(), compareRequest(t))
	require.NoError(t, err)

	info, err := service.CacheInfo()
	require.NoError(t, err)
	require.Len(t, info.Entries, 2)
	assert.Positive(t, info.TotalBytes)

	purge, err := service.CachePurge(app.CachePurgeRequest{KeepDays: 0, DryRun: false})
	require.NoError(t, err)
	assert.Equal(t, 2, purge.DeleteCount)
	assert.Len(t, purge.Deleted, 2)

	info, err = service.CacheInfo()
	require.NoError(t, err)
	assert.Empty(t, info.Entries)

	// FetchCache keeps nothing once the store is purged, so the next
	// compare goes back to the network. A fresh service avoids the
	// in-process singleflight state of the first run.
	rebuilt := app.NewService(remote, adapters.NewFileCacheStore(cacheDir))
	_, err = rebuilt.Compare(t.Context(), compareRequest(t))
	require.NoError(t, err)

	_, fetches := remote.counts()
	assert.Equal(t, 4, fetches)
}

func TestCompareFlowCommitPinsSkipResolution(t *testing.T) {
	remote := newFixtureRemote(t)
	service := app.NewService(remote, adapters.NewFileCacheStore(t.TempDir()))

	req := app.CompareRequest{
		TaqastaRef:       types.CommitRef(taqastaTip),
		CanastaRef:       types.CommitRef(canastaTip),
		MediaWikiVersion: "1.43",
		OutputPath:       filepath.Join(t.TempDir(), "report.txt"),
	}
	result, err := service.Compare(t.Context(), req)
	require.NoError(t, err)
	assert.True(t, result.Differences)

	resolves, fetches := remote.counts()
	assert.Equal(t, 0, resolves, "commit refs need no branch resolution")
	assert.Equal(t, 2, fetches)
}
