package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"manifest-diff/internal/app"
)

type validateOptions struct {
	Source           string
	Repo             string
	Path             string
	Branch           string
	Commit           string
	MediaWikiVersion string
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelay   int
}

func newValidateCommand() *cobra.Command {
	opts := validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Fetch one distribution manifest and check that it parses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Source, "source", "taqasta", "Manifest source (taqasta or canasta)")
	cmd.Flags().StringVar(&opts.Repo, "repo", "", "Repository override (owner/name)")
	cmd.Flags().StringVar(&opts.Path, "path", "", "Document path override within the repository")
	cmd.Flags().StringVar(&opts.Branch, "branch", "", "Branch to validate (defaults per source)")
	cmd.Flags().StringVar(&opts.Commit, "commit", "", "Commit hash (overrides branch)")
	cmd.Flags().StringVar(&opts.MediaWikiVersion, "mediawiki-version", "", "MediaWiki version for the Canasta document path")
	cmd.Flags().IntVar(&opts.HTTPTimeoutSec, "http-timeout", 30, "HTTP timeout in seconds (0 = default)")
	cmd.Flags().IntVar(&opts.HTTPRetries, "http-retries", 3, "HTTP retries (0 = default)")
	cmd.Flags().IntVar(&opts.HTTPRetryDelay, "http-retry-delay-ms", 200, "HTTP retry base delay in ms (0 = default)")

	_ = viper.BindPFlag("source", cmd.Flags().Lookup("source"))
	_ = viper.BindPFlag("repo", cmd.Flags().Lookup("repo"))
	_ = viper.BindPFlag("path", cmd.Flags().Lookup("path"))
	_ = viper.BindPFlag("branch", cmd.Flags().Lookup("branch"))
	_ = viper.BindPFlag("commit", cmd.Flags().Lookup("commit"))
	_ = viper.BindPFlag("mediawiki_version", cmd.Flags().Lookup("mediawiki-version"))
	_ = viper.BindPFlag("http_timeout_sec", cmd.Flags().Lookup("http-timeout"))
	_ = viper.BindPFlag("http_retries", cmd.Flags().Lookup("http-retries"))
	_ = viper.BindPFlag("http_retry_delay_ms", cmd.Flags().Lookup("http-retry-delay-ms"))

	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, opts validateOptions) error {
	source := resolveString(cmd, opts.Source, "source", "source")
	branch := resolveString(cmd, opts.Branch, "branch", "branch")
	if strings.TrimSpace(branch) == "" {
		branch = defaultBranchForSource(source)
	}
	service := newAppService()
	result, err := service.Validate(ctx, app.ValidateRequest{
		Source:           source,
		Repo:             resolveString(cmd, opts.Repo, "repo", "repo"),
		Path:             resolveString(cmd, opts.Path, "path", "path"),
		Ref:              refFrom(resolveString(cmd, opts.Commit, "commit", "commit"), branch),
		MediaWikiVersion: resolveString(cmd, opts.MediaWikiVersion, "mediawiki_version", "mediawiki-version"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("validated %s@%s: %d extensions, %d skins, %d packages, %d repositories\n",
		result.Source, shortCommit(result.ResolvedCommit),
		result.Extensions, result.Skins, result.Packages, result.Repositories)
	return nil
}

func defaultBranchForSource(source string) string {
	if strings.EqualFold(strings.TrimSpace(source), "canasta") {
		return app.DefaultCanastaBranch
	}
	return app.DefaultTaqastaBranch
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
