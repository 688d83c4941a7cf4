package types

type Category string

const (
	CategoryExtensions   Category = "extensions"
	CategorySkins        Category = "skins"
	CategoryComposer     Category = "packages"
	CategoryRepositories Category = "repositories"
)

// ManifestEntry is one named unit (extension or skin) pinned by a
// distribution manifest. Optional fields hold "" when the document does
// not set them, except Branch, which the loader defaults during
// normalization so the comparator never sees an unset branch.
type ManifestEntry struct {
	Name       string
	Commit     string
	Repository string
	Branch     string
	ExtraSteps []string
}

// Manifest is the normalized form of one side's document. It is built
// once by the loader and never mutated afterwards.
//
// Repositories holds the normalized union of the document's explicit
// repository URLs and every repository referenced by an extension or
// skin entry, sorted and deduplicated. ComposerPackages maps declared
// package names (original case; matching is case-insensitive) to
// version constraints (opaque strings, "dev" when the document omits
// one).
type Manifest struct {
	Extensions       map[string]ManifestEntry
	Skins            map[string]ManifestEntry
	ComposerPackages map[string]string
	Repositories     []string
}
