package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"manifest-diff/internal/adapters"
	"manifest-diff/internal/app"
)

func newAppService() app.Service {
	remote := adapters.NewGitHubRemoteAdapter(
		viper.GetString("github_token"),
		userAgent(),
		viper.GetInt("http_timeout_sec"),
		viper.GetInt("http_retries"),
		viper.GetInt("http_retry_delay_ms"),
	)
	if apiBase := strings.TrimSpace(viper.GetString("api_base_url")); apiBase != "" {
		rawBase := strings.TrimSpace(viper.GetString("raw_base_url"))
		if rawBase == "" {
			rawBase = apiBase
		}
		if err := remote.SetBaseURLs(apiBase, rawBase); err != nil {
			log.Warn().Err(err).Str("api_base_url", apiBase).Msg("ignoring invalid base url override")
		}
	}
	store := adapters.NewFileCacheStore(cacheDir())
	return app.NewService(remote, store)
}

// cacheDir resolves the on-disk cache location: explicit config first,
// then the platform user cache directory.
func cacheDir() string {
	if dir := viper.GetString("cache_dir"); dir != "" {
		return dir
	}
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "manifest-diff")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".manifest-diff-cache"
	}
	return filepath.Join(home, ".manifest-diff-cache")
}

func userAgent() string {
	return "manifest-diff/" + version
}
