package core

import (
	"context"
	"fmt"
	"sort"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"manifest-diff/internal/shared"
	"manifest-diff/internal/types"
)

// DefaultBranch is substituted for entries that do not pin a branch.
const DefaultBranch = "REL1_43"

// ManifestLoader parses a raw manifest document into the normalized
// Manifest form. All normalization happens here so the comparator works
// on fully-defaulted data.
type ManifestLoader struct{}

func NewManifestLoader() ManifestLoader {
	return ManifestLoader{}
}

type entryNode struct {
	Commit     string   `yaml:"commit"`
	Repository string   `yaml:"repository"`
	Branch     string   `yaml:"branch"`
	ExtraSteps []string `yaml:"additional steps"`
}

type packageNode struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type repositoryNode struct {
	URL string `yaml:"url"`
}

type documentFile struct {
	Extensions   []map[string]*entryNode `yaml:"extensions"`
	Skins        []map[string]*entryNode `yaml:"skins"`
	Packages     []packageNode           `yaml:"packages"`
	Repositories []repositoryNode        `yaml:"repositories"`
}

func (l ManifestLoader) Parse(ctx context.Context, raw []byte) (types.Manifest, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return types.Manifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("malformed manifest: not valid yaml").
			WithCause(err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return types.Manifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("malformed manifest: document is empty")
	}
	body := root.Content[0]
	if body.Kind != yaml.MappingNode {
		return types.Manifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("malformed manifest: top level must be a mapping")
	}
	var doc documentFile
	if err := body.Decode(&doc); err != nil {
		return types.Manifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("malformed manifest: unexpected shape").
			WithCause(err)
	}

	manifest := types.Manifest{
		Extensions:       map[string]types.ManifestEntry{},
		Skins:            map[string]types.ManifestEntry{},
		ComposerPackages: map[string]string{},
	}
	repos := map[string]struct{}{}

	if err := loadEntries(doc.Extensions, types.CategoryExtensions, manifest.Extensions, repos); err != nil {
		return types.Manifest{}, err
	}
	if err := loadEntries(doc.Skins, types.CategorySkins, manifest.Skins, repos); err != nil {
		return types.Manifest{}, err
	}
	seenPackages := map[string]struct{}{}
	for _, pkg := range doc.Packages {
		if pkg.Name == "" {
			continue
		}
		normalized := shared.NormalizeComposerName(pkg.Name)
		if _, exists := seenPackages[normalized]; exists {
			return types.Manifest{}, errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(fmt.Sprintf("duplicate entry %s in %s", normalized, types.CategoryComposer))
		}
		seenPackages[normalized] = struct{}{}
		version := pkg.Version
		if version == "" {
			version = "dev"
		}
		manifest.ComposerPackages[pkg.Name] = version
	}
	for _, repo := range doc.Repositories {
		if repo.URL == "" {
			continue
		}
		repos[shared.NormalizeRepositoryURL(repo.URL)] = struct{}{}
	}

	manifest.Repositories = make([]string, 0, len(repos))
	for url := range repos {
		manifest.Repositories = append(manifest.Repositories, url)
	}
	sort.Strings(manifest.Repositories)

	log.Ctx(ctx).Debug().
		Int("extensions", len(manifest.Extensions)).
		Int("skins", len(manifest.Skins)).
		Int("packages", len(manifest.ComposerPackages)).
		Int("repositories", len(manifest.Repositories)).
		Msg("manifest loaded")
	return manifest, nil
}

// loadEntries flattens one category's list of single-key mappings into
// the named entry map, recording referenced repositories along the way.
func loadEntries(items []map[string]*entryNode, category types.Category, into map[string]types.ManifestEntry, repos map[string]struct{}) error {
	for _, item := range items {
		for name, node := range item {
			if _, exists := into[name]; exists {
				return errbuilder.New().
					WithCode(errbuilder.CodeAlreadyExists).
					WithMsg(fmt.Sprintf("duplicate entry %s in %s", name, category))
			}
			entry := types.ManifestEntry{Name: name, Branch: DefaultBranch}
			if node != nil {
				entry.Commit = node.Commit
				entry.Repository = shared.NormalizeRepositoryURL(node.Repository)
				if node.Branch != "" {
					entry.Branch = node.Branch
				}
				entry.ExtraSteps = node.ExtraSteps
			}
			if entry.Repository != "" {
				repos[entry.Repository] = struct{}{}
			}
			into[name] = entry
		}
	}
	return nil
}

// ValidateManifest checks a parsed manifest for internal consistency.
// Parse already rejects malformed documents; this guards invariants the
// rest of the pipeline relies on.
func (l ManifestLoader) ValidateManifest(ctx context.Context, manifest types.Manifest) error {
	for name, entry := range manifest.Extensions {
		assert.NotEmpty(ctx, entry.Branch, fmt.Sprintf("extension %s must carry a branch after normalization", name))
	}
	for name, entry := range manifest.Skins {
		assert.NotEmpty(ctx, entry.Branch, fmt.Sprintf("skin %s must carry a branch after normalization", name))
	}
	for name, version := range manifest.ComposerPackages {
		if version == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("composer package %s has no version constraint", name))
		}
	}
	return nil
}
