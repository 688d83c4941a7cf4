package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"manifest-diff/internal/adapters"
	"manifest-diff/internal/core"
	"manifest-diff/internal/types"
)

const (
	DefaultTaqastaRepo   = "WikiTeq/Taqasta"
	DefaultTaqastaPath   = "values.yml"
	DefaultCanastaRepo   = "CanastaWiki/RecommendedRevisions"
	DefaultTaqastaBranch = "master"
	DefaultCanastaBranch = "main"
)

// Compare fetches both distribution manifests, diffs them and writes the
// rendered report. When no MediaWiki version is given the Taqasta manifest
// is fetched first so the version can be detected from it; an explicit
// version lets both documents be fetched concurrently.
func (s Service) Compare(ctx context.Context, req CompareRequest) (CompareResult, error) {
	taqastaRepo := defaultString(req.TaqastaRepo, DefaultTaqastaRepo)
	taqastaPath := defaultString(req.TaqastaPath, DefaultTaqastaPath)
	canastaRepo := defaultString(req.CanastaRepo, DefaultCanastaRepo)
	if strings.TrimSpace(req.TaqastaRef.Value) == "" {
		return CompareResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("taqasta ref is required")
	}
	if strings.TrimSpace(req.CanastaRef.Value) == "" {
		return CompareResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("canasta ref is required")
	}

	taqastaDoc := types.DocumentRef{Repo: taqastaRepo, Path: taqastaPath}
	mwVersion := strings.TrimSpace(req.MediaWikiVersion)

	var taqastaFetch, canastaFetch types.FetchResult
	if mwVersion != "" {
		canastaDoc := types.DocumentRef{Repo: canastaRepo, Path: core.CanastaRevisionsPath(mwVersion)}
		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			result, err := s.Fetcher.Fetch(groupCtx, taqastaDoc, req.TaqastaRef)
			if err != nil {
				return err
			}
			taqastaFetch = result
			return nil
		})
		group.Go(func() error {
			result, err := s.Fetcher.Fetch(groupCtx, canastaDoc, req.CanastaRef)
			if err != nil {
				return err
			}
			canastaFetch = result
			return nil
		})
		if err := group.Wait(); err != nil {
			return CompareResult{}, err
		}
	} else {
		result, err := s.Fetcher.Fetch(ctx, taqastaDoc, req.TaqastaRef)
		if err != nil {
			return CompareResult{}, err
		}
		taqastaFetch = result
		mwVersion = core.DetectMediaWikiVersion(taqastaFetch.Content)
		log.Ctx(ctx).Debug().
			Str("mediawiki_version", mwVersion).
			Msg("detected MediaWiki version from Taqasta manifest")
		canastaDoc := types.DocumentRef{Repo: canastaRepo, Path: core.CanastaRevisionsPath(mwVersion)}
		canastaFetch, err = s.Fetcher.Fetch(ctx, canastaDoc, req.CanastaRef)
		if err != nil {
			return CompareResult{}, err
		}
	}

	taqastaManifest, err := s.Loader.Parse(ctx, taqastaFetch.Content)
	if err != nil {
		return CompareResult{}, err
	}
	canastaManifest, err := s.Loader.Parse(ctx, canastaFetch.Content)
	if err != nil {
		return CompareResult{}, err
	}

	comparison := s.Comparator.Compare(taqastaManifest, canastaManifest)
	labels := types.ReportLabels{
		RefA:             req.TaqastaRef.Value,
		RefB:             req.CanastaRef.Value,
		MediaWikiVersion: mwVersion,
	}
	report := s.Renderer.Render(comparison, labels)

	output := adapters.NewOutputFileAdapter(strings.TrimSpace(req.OutputPath))
	if err := output.WriteReport(report); err != nil {
		return CompareResult{}, err
	}
	return CompareResult{
		Report:           report,
		MediaWikiVersion: mwVersion,
		TaqastaCommit:    taqastaFetch.ResolvedCommit,
		CanastaCommit:    canastaFetch.ResolvedCommit,
		Differences:      comparison.HasDifferences(),
		OutputPath:       strings.TrimSpace(req.OutputPath),
	}, nil
}

func defaultString(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
