package ports

import "context"

// RemotePort talks to the git hosting service. Both methods fail with a
// not-found error when the repository, branch, or commit does not
// exist, and an internal error for transport problems.
type RemotePort interface {
	ResolveBranch(ctx context.Context, repo string, branch string) (string, error)
	FetchContent(ctx context.Context, repo string, commit string, path string) ([]byte, error)
}
