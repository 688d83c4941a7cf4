package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-github/v28/github"
	"golang.org/x/oauth2"

	"manifest-diff/internal/ports"
	"manifest-diff/internal/shared"
)

// GitHubRemoteAdapter resolves branch refs through the GitHub API and
// downloads raw file content at a fixed commit. Transient transport
// failures and 5xx/429 responses are retried with exponential backoff;
// missing repositories, branches, and commits are not.
type GitHubRemoteAdapter struct {
	api        *github.Client
	rawBaseURL string
	userAgent  string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

const defaultRemoteTimeout = 30 * time.Second
const defaultRemoteRetries = 3
const defaultRemoteRetryDelay = 200 * time.Millisecond
const maxRemoteRetryDelay = 2 * time.Second
const defaultRawBaseURL = "https://raw.githubusercontent.com"

func NewGitHubRemoteAdapter(token string, userAgent string, timeoutSec int, retries int, retryDelayMs int) *GitHubRemoteAdapter {
	timeout := normalizeRemoteTimeout(timeoutSec)
	httpClient := &http.Client{Timeout: timeout}
	if strings.TrimSpace(token) != "" {
		source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), source)
		httpClient.Timeout = timeout
	}
	api := github.NewClient(httpClient)
	api.UserAgent = userAgent
	return &GitHubRemoteAdapter{
		api:        api,
		rawBaseURL: defaultRawBaseURL,
		userAgent:  userAgent,
		Timeout:    timeout,
		Retries:    normalizeRemoteRetries(retries),
		RetryDelay: normalizeRemoteRetryDelay(retryDelayMs),
	}
}

// SetBaseURLs points the adapter at a different API host and raw
// content host. Tests use this to run against a local stub.
func (a *GitHubRemoteAdapter) SetBaseURLs(apiURL string, rawURL string) error {
	parsed, err := url.Parse(apiURL)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid api base url").
			WithCause(err)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	a.api.BaseURL = parsed
	a.rawBaseURL = strings.TrimRight(rawURL, "/")
	return nil
}

func (a *GitHubRemoteAdapter) ResolveBranch(ctx context.Context, repo string, branch string) (string, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return "", err
	}
	var resolved string
	err = a.withRetries(ctx, func() (bool, error) {
		ghBranch, resp, err := a.api.Repositories.GetBranch(ctx, owner, name, branch)
		if err != nil {
			if resp == nil {
				return true, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg(fmt.Sprintf("network unavailable: resolve %s@%s", repo, branch)).
					WithCause(err)
			}
			switch {
			case resp.StatusCode == http.StatusNotFound:
				return false, errbuilder.New().
					WithCode(errbuilder.CodeNotFound).
					WithMsg(fmt.Sprintf("reference not found: %s@%s", repo, branch)).
					WithCause(err)
			case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
				return false, errbuilder.New().
					WithCode(errbuilder.CodePermissionDenied).
					WithMsg(fmt.Sprintf("access denied resolving %s@%s", repo, branch)).
					WithCause(err)
			case resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests:
				return true, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg(fmt.Sprintf("network unavailable: resolve %s@%s", repo, branch)).
					WithCause(err)
			default:
				return false, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg(fmt.Sprintf("branch resolution failed for %s@%s", repo, branch)).
					WithCause(err)
			}
		}
		sha := ghBranch.GetCommit().GetSHA()
		if sha == "" {
			return false, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("branch resolution returned no commit for %s@%s", repo, branch))
		}
		resolved = sha
		return false, nil
	})
	return resolved, err
}

func (a *GitHubRemoteAdapter) FetchContent(ctx context.Context, repo string, commit string, path string) ([]byte, error) {
	if _, _, err := splitRepo(repo); err != nil {
		return nil, err
	}
	contentURL := fmt.Sprintf("%s/%s/%s/%s", a.rawBaseURL, repo, commit, path)
	var content []byte
	err := a.withRetries(ctx, func() (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, nil)
		if err != nil {
			return false, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create raw content request").
				WithCause(err)
		}
		req.Header.Set("User-Agent", a.userAgent)
		client := &http.Client{Timeout: a.Timeout}
		resp, err := client.Do(req)
		if err != nil {
			return true, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("network unavailable: fetch %s", contentURL)).
				WithCause(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return false, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("reference not found: %s@%s/%s", repo, commit, path)).
				WithCause(shared.HTTPStatusError(resp.StatusCode, contentURL))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(resp.Body)
			message := strings.TrimSpace(string(body))
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return false, errbuilder.New().
					WithCode(errbuilder.CodePermissionDenied).
					WithMsg(fmt.Sprintf("access denied fetching %s", contentURL)).
					WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, contentURL, message))
			}
			retry := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
			return retry, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("network unavailable: fetch %s", contentURL)).
				WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, contentURL, message))
		}
		content, err = io.ReadAll(resp.Body)
		if err != nil {
			return true, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("network unavailable: read %s", contentURL)).
				WithCause(err)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// withRetries runs one remote call until it succeeds, reports a
// non-retryable error, or exhausts the attempt budget.
func (a *GitHubRemoteAdapter) withRetries(ctx context.Context, attempt func() (bool, error)) error {
	var lastErr error
	for i := 0; i < a.Retries; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		retry, err := attempt()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || i == a.Retries-1 {
			return err
		}
		time.Sleep(a.remoteRetryDelay(i))
	}
	if lastErr == nil {
		lastErr = errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("remote request failed")
	}
	return lastErr
}

func (a *GitHubRemoteAdapter) remoteRetryDelay(attempt int) time.Duration {
	delay := a.RetryDelay * time.Duration(1<<attempt)
	if delay > maxRemoteRetryDelay {
		delay = maxRemoteRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

func splitRepo(repo string) (string, string, error) {
	parts := strings.Split(strings.TrimSpace(repo), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("repository must be owner/name: %s", repo))
	}
	return parts[0], parts[1], nil
}

func normalizeRemoteTimeout(value int) time.Duration {
	timeout := time.Duration(value) * time.Second
	if timeout <= 0 {
		return defaultRemoteTimeout
	}
	return timeout
}

func normalizeRemoteRetries(value int) int {
	if value <= 0 {
		return defaultRemoteRetries
	}
	return value
}

func normalizeRemoteRetryDelay(value int) time.Duration {
	delay := time.Duration(value) * time.Millisecond
	if delay <= 0 {
		return defaultRemoteRetryDelay
	}
	return delay
}

var _ ports.RemotePort = (*GitHubRemoteAdapter)(nil)
