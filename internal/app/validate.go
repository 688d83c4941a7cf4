package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"manifest-diff/internal/core"
	"manifest-diff/internal/types"
)

// Validate fetches a single distribution manifest and checks that it
// parses cleanly, reporting entry counts per section.
func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	source := strings.ToLower(strings.TrimSpace(req.Source))
	var repo, path string
	switch source {
	case "taqasta":
		repo = defaultString(req.Repo, DefaultTaqastaRepo)
		path = defaultString(req.Path, DefaultTaqastaPath)
	case "canasta":
		repo = defaultString(req.Repo, DefaultCanastaRepo)
		mwVersion := defaultString(req.MediaWikiVersion, core.DefaultMediaWikiVersion)
		path = defaultString(req.Path, core.CanastaRevisionsPath(mwVersion))
	default:
		return ValidateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("source must be taqasta or canasta")
	}
	if strings.TrimSpace(req.Ref.Value) == "" {
		return ValidateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("ref is required")
	}

	fetch, err := s.Fetcher.Fetch(ctx, types.DocumentRef{Repo: repo, Path: path}, req.Ref)
	if err != nil {
		return ValidateResult{}, err
	}
	manifest, err := s.Loader.Parse(ctx, fetch.Content)
	if err != nil {
		return ValidateResult{}, err
	}
	if err := s.Loader.ValidateManifest(ctx, manifest); err != nil {
		return ValidateResult{}, err
	}
	return ValidateResult{
		Source:         source,
		ResolvedCommit: fetch.ResolvedCommit,
		Extensions:     len(manifest.Extensions),
		Skins:          len(manifest.Skins),
		Packages:       len(manifest.ComposerPackages),
		Repositories:   len(manifest.Repositories),
	}, nil
}
