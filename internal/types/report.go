package types

// Field names used as keys in EntryDiff.Fields.
const (
	FieldCommit         = "commit"
	FieldRepository     = "repository"
	FieldBranch         = "branch"
	FieldExtraSteps     = "extraSteps"
	FieldComposerUpdate = "requiresComposerUpdate"
)

// FieldValues holds one field's value on each side of a comparison.
// Unset optional fields appear as "".
type FieldValues struct {
	A string
	B string
}

// EntryDiff records every field on which a name present in both
// manifests differs.
type EntryDiff struct {
	Name   string
	Fields map[string]FieldValues
}

// CategoryDiff is the comparison result for one entry category
// (extensions or skins). All slices are sorted by name.
type CategoryDiff struct {
	OnlyInA   []ManifestEntry
	OnlyInB   []ManifestEntry
	Differing []EntryDiff
}

func (d CategoryDiff) Empty() bool {
	return len(d.OnlyInA) == 0 && len(d.OnlyInB) == 0 && len(d.Differing) == 0
}

// ComposerEntry is one member of a side's composer-requiring set: a
// declared composer package (with its version constraint) or an
// extension whose extra steps request a composer update (Version "").
type ComposerEntry struct {
	Name    string
	Version string
}

// ComposerDiff compares the composer-requiring sets of the two sides.
// Differing lists extensions present in both manifests whose
// composer-update status disagrees; such names appear here instead of
// in the OnlyIn listings.
type ComposerDiff struct {
	OnlyInA   []ComposerEntry
	OnlyInB   []ComposerEntry
	Differing []EntryDiff
}

func (d ComposerDiff) Empty() bool {
	return len(d.OnlyInA) == 0 && len(d.OnlyInB) == 0 && len(d.Differing) == 0
}

type RepositoryDiff struct {
	OnlyInA []string
	OnlyInB []string
}

func (d RepositoryDiff) Empty() bool {
	return len(d.OnlyInA) == 0 && len(d.OnlyInB) == 0
}

// ComparisonResult is the structured outcome of comparing two
// manifests. Ordering inside every list is lexicographic by name; the
// renderer and any downstream diffing of reports depend on it.
type ComparisonResult struct {
	Extensions   CategoryDiff
	Skins        CategoryDiff
	Composer     ComposerDiff
	Repositories RepositoryDiff
}

func (r ComparisonResult) HasDifferences() bool {
	return !r.Extensions.Empty() || !r.Skins.Empty() ||
		!r.Composer.Empty() || !r.Repositories.Empty()
}

// ReportLabels carries the human-readable context printed alongside the
// structured result.
type ReportLabels struct {
	RefA             string
	RefB             string
	MediaWikiVersion string
}
