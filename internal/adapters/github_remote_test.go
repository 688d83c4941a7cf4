package adapters

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRemoteAdapter(t *testing.T, apiURL string, rawURL string) *GitHubRemoteAdapter {
	t.Helper()
	adapter := NewGitHubRemoteAdapter("", "manifest-diff/test", 5, 3, 1)
	require.NoError(t, adapter.SetBaseURLs(apiURL, rawURL))
	return adapter
}

func TestGitHubRemoteResolveBranch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/WikiTeq/Taqasta/branches/master", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"master","commit":{"sha":"0123456789abcdef0123456789abcdef01234567"}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	adapter := newTestRemoteAdapter(t, server.URL, server.URL)
	commit, err := adapter.ResolveBranch(t.Context(), "WikiTeq/Taqasta", "master")
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", commit)
}

func TestGitHubRemoteResolveBranchNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	adapter := newTestRemoteAdapter(t, server.URL, server.URL)
	_, err := adapter.ResolveBranch(t.Context(), "WikiTeq/Taqasta", "gone")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestGitHubRemoteResolveBranchAccessDenied(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"Forbidden"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	adapter := newTestRemoteAdapter(t, server.URL, server.URL)
	_, err := adapter.ResolveBranch(t.Context(), "WikiTeq/Taqasta", "master")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodePermissionDenied, errbuilder.CodeOf(err))
}

func TestGitHubRemoteResolveBranchRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/WikiTeq/Taqasta/branches/master", func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"name":"master","commit":{"sha":"feedfacefeedfacefeedfacefeedfacefeedface"}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	adapter := newTestRemoteAdapter(t, server.URL, server.URL)
	commit, err := adapter.ResolveBranch(t.Context(), "WikiTeq/Taqasta", "master")
	require.NoError(t, err)
	assert.Equal(t, "feedfacefeedfacefeedfacefeedfacefeedface", commit)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestGitHubRemoteResolveBranchMissingCommit(t *testing.T) {
	var attempts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/WikiTeq/Taqasta/branches/master", func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		fmt.Fprint(w, `{"name":"master","commit":null}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	adapter := newTestRemoteAdapter(t, server.URL, server.URL)
	_, err := adapter.ResolveBranch(t.Context(), "WikiTeq/Taqasta", "master")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
	assert.Equal(t, int32(1), attempts.Load(), "an empty commit is not retried")
}

func TestGitHubRemoteResolveBranchRejectsMalformedRepo(t *testing.T) {
	adapter := NewGitHubRemoteAdapter("", "manifest-diff/test", 1, 1, 1)
	for _, repo := range []string{"", "taqasta", "a/b/c", "/name", "owner/"} {
		_, err := adapter.ResolveBranch(t.Context(), repo, "master")
		require.Error(t, err, "repo %q", repo)
		assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err), "repo %q", repo)
	}
}

func TestGitHubRemoteFetchContent(t *testing.T) {
	var gotUserAgent string
	mux := http.NewServeMux()
	mux.HandleFunc("/WikiTeq/Taqasta/abc123/values.yml", func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, "extensions:\n  Echo:\n")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	adapter := newTestRemoteAdapter(t, server.URL, server.URL)
	content, err := adapter.FetchContent(t.Context(), "WikiTeq/Taqasta", "abc123", "values.yml")
	require.NoError(t, err)
	assert.Equal(t, "extensions:\n  Echo:\n", string(content))
	assert.Equal(t, "manifest-diff/test", gotUserAgent)
}

func TestGitHubRemoteFetchContentNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	adapter := newTestRemoteAdapter(t, server.URL, server.URL)
	_, err := adapter.FetchContent(t.Context(), "CanastaWiki/RecommendedRevisions", "abc123", "1.43.yaml")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestGitHubRemoteFetchContentAccessDenied(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "rate limited")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	adapter := newTestRemoteAdapter(t, server.URL, server.URL)
	_, err := adapter.FetchContent(t.Context(), "WikiTeq/Taqasta", "abc123", "values.yml")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodePermissionDenied, errbuilder.CodeOf(err))
}

func TestGitHubRemoteFetchContentExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	adapter := newTestRemoteAdapter(t, server.URL, server.URL)
	adapter.Retries = 2
	_, err := adapter.FetchContent(t.Context(), "WikiTeq/Taqasta", "abc123", "values.yml")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
	assert.Equal(t, int32(2), attempts.Load())

	var builder *errbuilder.ErrBuilder
	require.ErrorAs(t, err, &builder)
	assert.True(t, strings.HasPrefix(builder.Msg, "network unavailable"), "message %q", builder.Msg)
}

func TestNormalizeRemoteSettings(t *testing.T) {
	assert.Equal(t, defaultRemoteTimeout, normalizeRemoteTimeout(0))
	assert.Equal(t, 10*time.Second, normalizeRemoteTimeout(10))
	assert.Equal(t, defaultRemoteRetries, normalizeRemoteRetries(-1))
	assert.Equal(t, 5, normalizeRemoteRetries(5))
	assert.Equal(t, defaultRemoteRetryDelay, normalizeRemoteRetryDelay(0))
	assert.Equal(t, 50*time.Millisecond, normalizeRemoteRetryDelay(50))
}
