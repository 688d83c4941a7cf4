package policies

import (
	"manifest-diff/internal/types"
)

// ComposerUpdateStep is the extra step that marks an extension as
// requiring a composer update after checkout. Matching is exact; the
// documents spell the step consistently.
const ComposerUpdateStep = "composer update"

// ComparePolicy fixes which entry fields participate in the
// field-by-field comparison of names present in both manifests, per
// category and in report order.
type ComparePolicy struct {
	fields map[types.Category][]string
}

func NewComparePolicy() ComparePolicy {
	entryFields := []string{
		types.FieldCommit,
		types.FieldRepository,
		types.FieldBranch,
		types.FieldExtraSteps,
	}
	return ComparePolicy{
		fields: map[types.Category][]string{
			types.CategoryExtensions: entryFields,
			types.CategorySkins:      entryFields,
		},
	}
}

func (p ComparePolicy) Fields(category types.Category) []string {
	return p.fields[category]
}

// RequiresComposerUpdate reports whether an entry's extra steps request
// a composer update.
func (p ComparePolicy) RequiresComposerUpdate(entry types.ManifestEntry) bool {
	for _, step := range entry.ExtraSteps {
		if step == ComposerUpdateStep {
			return true
		}
	}
	return false
}
