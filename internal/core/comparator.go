package core

import (
	"sort"
	"strconv"
	"strings"

	"manifest-diff/internal/policies"
	"manifest-diff/internal/shared"
	"manifest-diff/internal/types"
)

// Comparator computes the structured difference between two normalized
// manifests. Compare is total over well-formed manifests, pure, and
// deterministic: every listing it emits is sorted by name.
type Comparator struct {
	policy policies.ComparePolicy
}

func NewComparator(policy policies.ComparePolicy) Comparator {
	return Comparator{policy: policy}
}

func (c Comparator) Compare(a types.Manifest, b types.Manifest) types.ComparisonResult {
	return types.ComparisonResult{
		Extensions:   c.compareCategory(types.CategoryExtensions, a.Extensions, b.Extensions),
		Skins:        c.compareCategory(types.CategorySkins, a.Skins, b.Skins),
		Composer:     c.compareComposer(a, b),
		Repositories: compareRepositories(a.Repositories, b.Repositories),
	}
}

func (c Comparator) compareCategory(category types.Category, a map[string]types.ManifestEntry, b map[string]types.ManifestEntry) types.CategoryDiff {
	diff := types.CategoryDiff{}
	for _, name := range sortedEntryNames(a) {
		if _, ok := b[name]; !ok {
			diff.OnlyInA = append(diff.OnlyInA, a[name])
		}
	}
	for _, name := range sortedEntryNames(b) {
		if _, ok := a[name]; !ok {
			diff.OnlyInB = append(diff.OnlyInB, b[name])
		}
	}
	for _, name := range sortedEntryNames(a) {
		entryB, ok := b[name]
		if !ok {
			continue
		}
		fields := c.compareFields(category, a[name], entryB)
		if len(fields) > 0 {
			diff.Differing = append(diff.Differing, types.EntryDiff{Name: name, Fields: fields})
		}
	}
	return diff
}

func (c Comparator) compareFields(category types.Category, a types.ManifestEntry, b types.ManifestEntry) map[string]types.FieldValues {
	fields := map[string]types.FieldValues{}
	for _, field := range c.policy.Fields(category) {
		switch field {
		case types.FieldCommit:
			if a.Commit != b.Commit {
				fields[field] = types.FieldValues{A: a.Commit, B: b.Commit}
			}
		case types.FieldRepository:
			// Loader stores repositories post-normalization, so plain
			// equality already treats ".git" and trailing-slash variants
			// as equal.
			if a.Repository != b.Repository {
				fields[field] = types.FieldValues{A: a.Repository, B: b.Repository}
			}
		case types.FieldBranch:
			if a.Branch != b.Branch {
				fields[field] = types.FieldValues{A: a.Branch, B: b.Branch}
			}
		case types.FieldExtraSteps:
			setA := stepSet(a.ExtraSteps)
			setB := stepSet(b.ExtraSteps)
			if !sameStepSet(setA, setB) {
				fields[field] = types.FieldValues{A: renderStepSet(setA), B: renderStepSet(setB)}
			}
		}
	}
	return fields
}

// compareComposer works over each side's composer-requiring set: the
// declared composer packages plus every extension whose extra steps
// request a composer update. Extensions present in both manifests with
// disagreeing status are reported under Differing and excluded from the
// OnlyIn listings.
func (c Comparator) compareComposer(a types.Manifest, b types.Manifest) types.ComposerDiff {
	diff := types.ComposerDiff{}
	conflicted := map[string]struct{}{}
	for _, name := range sortedEntryNames(a.Extensions) {
		entryB, ok := b.Extensions[name]
		if !ok {
			continue
		}
		inA := c.policy.RequiresComposerUpdate(a.Extensions[name])
		inB := c.policy.RequiresComposerUpdate(entryB)
		if inA == inB {
			continue
		}
		conflicted[shared.NormalizeComposerName(name)] = struct{}{}
		diff.Differing = append(diff.Differing, types.EntryDiff{
			Name: name,
			Fields: map[string]types.FieldValues{
				types.FieldComposerUpdate: {A: strconv.FormatBool(inA), B: strconv.FormatBool(inB)},
			},
		})
	}

	setA := c.composerSet(a)
	setB := c.composerSet(b)
	for _, key := range sortedComposerKeys(setA) {
		if _, ok := setB[key]; ok {
			continue
		}
		if _, ok := conflicted[key]; ok {
			continue
		}
		diff.OnlyInA = append(diff.OnlyInA, setA[key])
	}
	for _, key := range sortedComposerKeys(setB) {
		if _, ok := setA[key]; ok {
			continue
		}
		if _, ok := conflicted[key]; ok {
			continue
		}
		diff.OnlyInB = append(diff.OnlyInB, setB[key])
	}
	return diff
}

// composerSet keys entries by normalized name. Declared packages keep
// their written name and version for display; extension-derived entries
// carry the normalized name and no version.
func (c Comparator) composerSet(m types.Manifest) map[string]types.ComposerEntry {
	set := map[string]types.ComposerEntry{}
	for _, name := range sortedEntryNames(m.Extensions) {
		if c.policy.RequiresComposerUpdate(m.Extensions[name]) {
			normalized := shared.NormalizeComposerName(name)
			set[normalized] = types.ComposerEntry{Name: normalized}
		}
	}
	for name, version := range m.ComposerPackages {
		set[shared.NormalizeComposerName(name)] = types.ComposerEntry{Name: name, Version: version}
	}
	return set
}

func compareRepositories(a []string, b []string) types.RepositoryDiff {
	diff := types.RepositoryDiff{}
	setA := stringSet(a)
	setB := stringSet(b)
	for _, url := range a {
		if _, ok := setB[url]; !ok {
			diff.OnlyInA = append(diff.OnlyInA, url)
		}
	}
	for _, url := range b {
		if _, ok := setA[url]; !ok {
			diff.OnlyInB = append(diff.OnlyInB, url)
		}
	}
	return diff
}

func sortedEntryNames(entries map[string]types.ManifestEntry) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedComposerKeys(set map[string]types.ComposerEntry) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

func stepSet(steps []string) map[string]struct{} {
	set := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		set[step] = struct{}{}
	}
	return set
}

func sameStepSet(a map[string]struct{}, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for step := range a {
		if _, ok := b[step]; !ok {
			return false
		}
	}
	return true
}

// renderStepSet yields the canonical sorted comma-joined rendering used
// as the field value for extra-step diffs; "" for an empty set.
func renderStepSet(set map[string]struct{}) string {
	steps := make([]string, 0, len(set))
	for step := range set {
		steps = append(steps, step)
	}
	sort.Strings(steps)
	return strings.Join(steps, ", ")
}
