package types

// DocumentRef names one file in a remote git repository.
type DocumentRef struct {
	// Repo is the "owner/name" form, e.g. "WikiTeq/Taqasta".
	Repo string
	// Path is the file path within the repository, e.g. "values.yml".
	Path string
}

type RefKind string

const (
	RefKindBranch RefKind = "branch"
	RefKindCommit RefKind = "commit"
)

// Ref identifies a revision of a remote document, either by branch name
// or by commit hash.
type Ref struct {
	Value string
	Kind  RefKind
}

func BranchRef(name string) Ref {
	return Ref{Value: name, Kind: RefKindBranch}
}

func CommitRef(hash string) Ref {
	return Ref{Value: hash, Kind: RefKindCommit}
}

// ParseRef classifies a bare revision string from config or environment
// input: a plausible abbreviated or full hex hash is treated as a
// commit, anything else as a branch name. Callers that know the kind
// should construct the Ref directly.
func ParseRef(s string) Ref {
	if isHexHash(s) {
		return CommitRef(s)
	}
	return BranchRef(s)
}

func isHexHash(s string) bool {
	if len(s) < 7 || len(s) > 40 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
