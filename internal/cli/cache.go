package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"manifest-diff/internal/app"
)

type cachePurgeOptions struct {
	KeepDays int
	DryRun   bool
}

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and prune the document cache",
	}
	cmd.AddCommand(newCacheInfoCommand())
	cmd.AddCommand(newCachePurgeCommand())
	return cmd
}

func newCacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "List cached documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheInfo()
		},
	}
}

func runCacheInfo() error {
	service := newAppService()
	result, err := service.CacheInfo()
	if err != nil {
		return err
	}
	fmt.Printf("cached documents: %d (%d bytes)\n", len(result.Entries), result.TotalBytes)
	for _, entry := range result.Entries {
		fmt.Printf("- %s/%s @ %s (%s): %d bytes, fetched %s\n",
			entry.Repository, entry.Path, entry.Ref, shortCommit(entry.ResolvedCommit),
			entry.SizeBytes, entry.FetchedAt.Format(time.RFC3339))
	}
	return nil
}

func newCachePurgeCommand() *cobra.Command {
	opts := cachePurgeOptions{}
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove cached documents past the retention window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCachePurge(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.KeepDays, "keep-days", 0, "Keep documents fetched within the last N days (0 purges everything)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", true, "Only report purge actions without deleting")
	_ = viper.BindPFlag("keep_days", cmd.Flags().Lookup("keep-days"))
	_ = viper.BindPFlag("dry_run", cmd.Flags().Lookup("dry-run"))
	return cmd
}

func runCachePurge(cmd *cobra.Command, opts cachePurgeOptions) error {
	service := newAppService()
	result, err := service.CachePurge(app.CachePurgeRequest{
		KeepDays: resolveInt(cmd, opts.KeepDays, "keep_days", "keep-days"),
		DryRun:   resolveBool(cmd, opts.DryRun, "dry_run", "dry-run"),
	})
	if err != nil {
		return err
	}
	if result.DryRun {
		fmt.Printf("dry-run: keep=%d delete=%d\n", result.KeepCount, result.DeleteCount)
		return nil
	}
	fmt.Printf("purged documents: %d\n", result.DeleteCount)
	return nil
}

func shortCommit(commit string) string {
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}
