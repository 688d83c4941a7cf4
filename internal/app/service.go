package app

import (
	"time"

	"manifest-diff/internal/adapters"
	"manifest-diff/internal/core"
	"manifest-diff/internal/policies"
	"manifest-diff/internal/ports"
)

type Service struct {
	Loader     core.ManifestLoader
	Comparator core.Comparator
	Fetcher    *core.FetchCache
	Store      ports.CacheStorePort
	Renderer   ports.ReportRendererPort
	Clock      func() time.Time
}

func NewService(remote ports.RemotePort, store ports.CacheStorePort) Service {
	return Service{
		Loader:     core.NewManifestLoader(),
		Comparator: core.NewComparator(policies.NewComparePolicy()),
		Fetcher:    core.NewFetchCache(remote, store),
		Store:      store,
		Renderer:   adapters.NewTextRenderer(),
		Clock:      time.Now,
	}
}
