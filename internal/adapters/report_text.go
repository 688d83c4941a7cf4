package adapters

import (
	"fmt"
	"sort"
	"strings"

	"manifest-diff/internal/ports"
	"manifest-diff/internal/types"
)

// TextRenderer formats a comparison result as the plain-text report.
// Sections appear only when they carry differences; an entirely clean
// comparison prints a single confirmation line.
type TextRenderer struct{}

func NewTextRenderer() TextRenderer {
	return TextRenderer{}
}

// displayRepository is shown for entries that do not pin a repository;
// MediaWiki extensions default to the wikimedia gerrit mirrors.
const displayRepository = "wikimedia"

func (r TextRenderer) Render(result types.ComparisonResult, labels types.ReportLabels) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Comparing Taqasta (%s) vs Canasta (%s)", labels.RefA, labels.RefB))
	if labels.MediaWikiVersion != "" {
		lines = append(lines, fmt.Sprintf("MediaWiki Version: %s", labels.MediaWikiVersion))
	}
	lines = append(lines, strings.Repeat("=", 70))

	if !result.Extensions.Empty() {
		lines = append(lines, "", "EXTENSIONS:")
		lines = append(lines, renderCategory("Extensions", result.Extensions, true)...)
	}
	if !result.Skins.Empty() {
		lines = append(lines, "", "SKINS:")
		lines = append(lines, renderCategory("Skins", result.Skins, false)...)
	}
	if !result.Composer.Empty() {
		lines = append(lines, "", "COMPOSER PACKAGES:")
		lines = append(lines, renderComposer(result.Composer)...)
	}
	if !result.Repositories.Empty() {
		lines = append(lines, "", "REPOSITORIES:")
		lines = append(lines, renderRepositories(result.Repositories)...)
	}
	if !result.HasDifferences() {
		lines = append(lines, "", "No differences found!")
	}
	return strings.Join(lines, "\n")
}

func renderCategory(label string, diff types.CategoryDiff, showDetails bool) []string {
	var lines []string
	if len(diff.OnlyInA) > 0 {
		lines = append(lines, fmt.Sprintf("  %s only in Taqasta:", label))
		for _, entry := range diff.OnlyInA {
			lines = append(lines, fmt.Sprintf("    + %s", entry.Name))
			if showDetails {
				lines = append(lines, entryDetails(entry)...)
			}
		}
	}
	if len(diff.OnlyInB) > 0 {
		lines = append(lines, fmt.Sprintf("  %s only in Canasta:", label))
		for _, entry := range diff.OnlyInB {
			lines = append(lines, fmt.Sprintf("    - %s", entry.Name))
			if showDetails {
				lines = append(lines, entryDetails(entry)...)
			}
		}
	}
	if len(diff.Differing) > 0 {
		lines = append(lines, fmt.Sprintf("  %s with different configurations:", label))
		for _, entryDiff := range diff.Differing {
			lines = append(lines, fmt.Sprintf("    ~ %s:", entryDiff.Name))
			lines = append(lines, fieldLines(entryDiff.Fields)...)
		}
	}
	return lines
}

func entryDetails(entry types.ManifestEntry) []string {
	var lines []string
	if entry.Commit != "" {
		lines = append(lines, fmt.Sprintf("        commit: %s", entry.Commit))
	}
	if entry.Repository != "" {
		lines = append(lines, fmt.Sprintf("        repository: %s", entry.Repository))
	}
	return lines
}

func fieldLines(fields map[string]types.FieldValues) []string {
	var lines []string
	if values, ok := fields[types.FieldCommit]; ok {
		lines = append(lines,
			fmt.Sprintf("        Taqasta commit: %s", displayValue(values.A)),
			fmt.Sprintf("        Canasta commit: %s", displayValue(values.B)))
	}
	if values, ok := fields[types.FieldRepository]; ok {
		lines = append(lines,
			fmt.Sprintf("        Taqasta repo: %s", displayRepo(values.A)),
			fmt.Sprintf("        Canasta repo: %s", displayRepo(values.B)))
	}
	if values, ok := fields[types.FieldBranch]; ok {
		lines = append(lines,
			fmt.Sprintf("        Taqasta branch: %s", values.A),
			fmt.Sprintf("        Canasta branch: %s", values.B))
	}
	if values, ok := fields[types.FieldExtraSteps]; ok {
		onlyA, onlyB := stepDifferences(values.A, values.B)
		if len(onlyA) > 0 {
			lines = append(lines, fmt.Sprintf("        Only in Taqasta: [%s]", strings.Join(onlyA, ", ")))
		}
		if len(onlyB) > 0 {
			lines = append(lines, fmt.Sprintf("        Only in Canasta: [%s]", strings.Join(onlyB, ", ")))
		}
	}
	return lines
}

func renderComposer(diff types.ComposerDiff) []string {
	var lines []string
	if len(diff.OnlyInA) > 0 {
		lines = append(lines, "  Composer packages only in Taqasta:")
		for _, pkg := range diff.OnlyInA {
			lines = append(lines, composerLine("+", pkg))
		}
	}
	if len(diff.OnlyInB) > 0 {
		lines = append(lines, "  Extensions requiring composer update only in Canasta:")
		for _, pkg := range diff.OnlyInB {
			lines = append(lines, composerLine("-", pkg))
		}
	}
	if len(diff.Differing) > 0 {
		lines = append(lines, "  Extensions with mismatched composer update status:")
		for _, entryDiff := range diff.Differing {
			lines = append(lines, fmt.Sprintf("    ~ %s:", entryDiff.Name))
			if values, ok := entryDiff.Fields[types.FieldComposerUpdate]; ok {
				lines = append(lines,
					fmt.Sprintf("        Taqasta composer update: %s", values.A),
					fmt.Sprintf("        Canasta composer update: %s", values.B))
			}
		}
	}
	return lines
}

func composerLine(marker string, pkg types.ComposerEntry) string {
	if pkg.Version != "" {
		return fmt.Sprintf("    %s %s @ %s", marker, pkg.Name, pkg.Version)
	}
	return fmt.Sprintf("    %s %s", marker, pkg.Name)
}

func renderRepositories(diff types.RepositoryDiff) []string {
	var lines []string
	if len(diff.OnlyInA) > 0 {
		lines = append(lines, "  Custom repositories only in Taqasta:")
		for _, url := range diff.OnlyInA {
			lines = append(lines, fmt.Sprintf("    + %s", url))
		}
	}
	if len(diff.OnlyInB) > 0 {
		lines = append(lines, "  Custom repositories only in Canasta:")
		for _, url := range diff.OnlyInB {
			lines = append(lines, fmt.Sprintf("    - %s", url))
		}
	}
	return lines
}

func displayValue(value string) string {
	if value == "" {
		return "(none)"
	}
	return value
}

func displayRepo(value string) string {
	if value == "" {
		return displayRepository
	}
	return value
}

// stepDifferences recovers the per-side step sets from their canonical
// comma-joined renderings and returns the sorted one-sided steps.
func stepDifferences(renderedA string, renderedB string) ([]string, []string) {
	setA := splitStepSet(renderedA)
	setB := splitStepSet(renderedB)
	var onlyA, onlyB []string
	for step := range setA {
		if _, ok := setB[step]; !ok {
			onlyA = append(onlyA, step)
		}
	}
	for step := range setB {
		if _, ok := setA[step]; !ok {
			onlyB = append(onlyB, step)
		}
	}
	sort.Strings(onlyA)
	sort.Strings(onlyB)
	return onlyA, onlyB
}

func splitStepSet(rendered string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, step := range strings.Split(rendered, ", ") {
		if step != "" {
			set[step] = struct{}{}
		}
	}
	return set
}

var _ ports.ReportRendererPort = TextRenderer{}
