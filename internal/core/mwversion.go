package core

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// DefaultMediaWikiVersion is assumed when a document does not state one.
const DefaultMediaWikiVersion = "1.43"

// mediaWikiVersionKeys are checked in order; the first present key wins.
var mediaWikiVersionKeys = []string{"version", "mediawiki_version", "mw_version", "mediawiki"}

// DetectMediaWikiVersion extracts the major.minor MediaWiki version from
// a raw Taqasta document. The version selects the Canasta revisions file
// and is echoed in the report header. Detection is best-effort and total:
// anything unreadable falls back to DefaultMediaWikiVersion.
func DetectMediaWikiVersion(raw []byte) string {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return DefaultMediaWikiVersion
	}
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return DefaultMediaWikiVersion
	}
	body := root.Content[0]
	for _, key := range mediaWikiVersionKeys {
		node, ok := mappingValue(body, key)
		if !ok {
			continue
		}
		// The first present key decides; an unusable value means the
		// document states no readable version.
		if version, ok := majorMinor(node); ok {
			return version
		}
		return DefaultMediaWikiVersion
	}
	return DefaultMediaWikiVersion
}

func mappingValue(mapping *yaml.Node, key string) (*yaml.Node, bool) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1], true
		}
	}
	return nil, false
}

// majorMinor renders a version scalar as "major.minor". String versions
// need at least two dotted components ("1.43.0" -> "1.43"); numeric
// scalars keep their written form (1.44 -> "1.44") or gain a ".0"
// (143 -> "143.0").
func majorMinor(node *yaml.Node) (string, bool) {
	if node.Kind != yaml.ScalarNode {
		return "", false
	}
	switch node.Tag {
	case "!!int":
		return node.Value + ".0", true
	case "!!float":
		if strings.Contains(node.Value, ".") {
			return node.Value, true
		}
		return node.Value + ".0", true
	case "!!str":
		if strings.Count(node.Value, ".") < 1 {
			return "", false
		}
		parsed, err := semver.NewVersion(strings.TrimSpace(node.Value))
		if err != nil {
			return "", false
		}
		return fmt.Sprintf("%d.%d", parsed.Major(), parsed.Minor()), true
	default:
		return "", false
	}
}

// CanastaRevisionsPath is the document path inside the Canasta
// recommended-revisions repository for one MediaWiki version.
func CanastaRevisionsPath(mwVersion string) string {
	return mwVersion + ".yaml"
}
