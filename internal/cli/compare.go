package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"manifest-diff/internal/app"
	"manifest-diff/internal/types"
)

type compareOptions struct {
	TaqastaRepo      string
	TaqastaBranch    string
	TaqastaCommit    string
	CanastaRepo      string
	CanastaBranch    string
	CanastaCommit    string
	MediaWikiVersion string
	Output           string
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelay   int
}

func newCompareCommand() *cobra.Command {
	opts := compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the Taqasta and Canasta manifests and report differences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompare(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.TaqastaRepo, "taqasta-repo", app.DefaultTaqastaRepo, "Taqasta repository (owner/name)")
	cmd.Flags().StringVar(&opts.TaqastaBranch, "taqasta-branch", app.DefaultTaqastaBranch, "Taqasta branch to compare")
	cmd.Flags().StringVar(&opts.TaqastaCommit, "taqasta-commit", "", "Taqasta commit hash (overrides branch)")
	cmd.Flags().StringVar(&opts.CanastaRepo, "canasta-repo", app.DefaultCanastaRepo, "Canasta repository (owner/name)")
	cmd.Flags().StringVar(&opts.CanastaBranch, "canasta-branch", app.DefaultCanastaBranch, "Canasta branch to compare")
	cmd.Flags().StringVar(&opts.CanastaCommit, "canasta-commit", "", "Canasta commit hash (overrides branch)")
	cmd.Flags().StringVar(&opts.MediaWikiVersion, "mediawiki-version", "", "MediaWiki version (e.g. 1.43); detected from Taqasta when empty")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Write the diff report to this file instead of stdout")
	cmd.Flags().IntVar(&opts.HTTPTimeoutSec, "http-timeout", 30, "HTTP timeout in seconds (0 = default)")
	cmd.Flags().IntVar(&opts.HTTPRetries, "http-retries", 3, "HTTP retries (0 = default)")
	cmd.Flags().IntVar(&opts.HTTPRetryDelay, "http-retry-delay-ms", 200, "HTTP retry base delay in ms (0 = default)")

	_ = viper.BindPFlag("taqasta_repo", cmd.Flags().Lookup("taqasta-repo"))
	_ = viper.BindPFlag("taqasta_branch", cmd.Flags().Lookup("taqasta-branch"))
	_ = viper.BindPFlag("taqasta_commit", cmd.Flags().Lookup("taqasta-commit"))
	_ = viper.BindPFlag("canasta_repo", cmd.Flags().Lookup("canasta-repo"))
	_ = viper.BindPFlag("canasta_branch", cmd.Flags().Lookup("canasta-branch"))
	_ = viper.BindPFlag("canasta_commit", cmd.Flags().Lookup("canasta-commit"))
	_ = viper.BindPFlag("mediawiki_version", cmd.Flags().Lookup("mediawiki-version"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("http_timeout_sec", cmd.Flags().Lookup("http-timeout"))
	_ = viper.BindPFlag("http_retries", cmd.Flags().Lookup("http-retries"))
	_ = viper.BindPFlag("http_retry_delay_ms", cmd.Flags().Lookup("http-retry-delay-ms"))

	return cmd
}

func runCompare(ctx context.Context, cmd *cobra.Command, opts compareOptions) error {
	service := newAppService()
	result, err := service.Compare(ctx, app.CompareRequest{
		TaqastaRepo: resolveString(cmd, opts.TaqastaRepo, "taqasta_repo", "taqasta-repo"),
		TaqastaRef: refFrom(
			resolveString(cmd, opts.TaqastaCommit, "taqasta_commit", "taqasta-commit"),
			resolveString(cmd, opts.TaqastaBranch, "taqasta_branch", "taqasta-branch"),
		),
		CanastaRepo: resolveString(cmd, opts.CanastaRepo, "canasta_repo", "canasta-repo"),
		CanastaRef: refFrom(
			resolveString(cmd, opts.CanastaCommit, "canasta_commit", "canasta-commit"),
			resolveString(cmd, opts.CanastaBranch, "canasta_branch", "canasta-branch"),
		),
		MediaWikiVersion: resolveString(cmd, opts.MediaWikiVersion, "mediawiki_version", "mediawiki-version"),
		OutputPath:       resolveString(cmd, opts.Output, "output", "output"),
	})
	if err != nil {
		return err
	}
	if result.OutputPath != "" {
		fmt.Printf("Diff saved to %s\n", result.OutputPath)
	}
	return nil
}

// refFrom prefers an explicit commit over a branch name.
func refFrom(commit string, branch string) types.Ref {
	if strings.TrimSpace(commit) != "" {
		return types.CommitRef(strings.TrimSpace(commit))
	}
	return types.BranchRef(strings.TrimSpace(branch))
}
