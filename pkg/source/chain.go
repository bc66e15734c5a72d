package source

import (
	"fmt"
	"time"

	"igfeed/pkg/config"
	"igfeed/pkg/logger"
)

// Clients bundles the network dependencies of the remote sources
type Clients struct {
	Graph      MediaFetcher
	Profiles   ProfileFetcher
	Downloader Downloader
}

// BuildChain instantiates the configured sources in order. token overrides
// the configured access token when non-empty.
func BuildChain(cfg *config.Config, clients Clients, token string, now func() time.Time, log logger.Logger) ([]Source, error) {
	if token == "" {
		token = cfg.Instagram.AccessToken
	}

	names := cfg.SourceChain()
	if len(names) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}

	chain := make([]Source, 0, len(names))
	for _, name := range names {
		switch name {
		case config.SourceAPI:
			chain = append(chain, NewAPISource(clients.Graph, cfg.Instagram.UserID, token, log))
		case config.SourceScrape:
			chain = append(chain, NewScrapeSource(clients.Profiles, clients.Downloader,
				cfg.Instagram.Username, cfg.TempPath(), log))
		case config.SourceManual:
			chain = append(chain, NewManualSource(cfg.Sources.ManualDir, cfg.Sources.ManualPatterns, log))
		case config.SourcePlaceholder:
			chain = append(chain, NewPlaceholderSource(cfg.Site.Name, now))
		default:
			return nil, fmt.Errorf("unknown source %q", name)
		}
	}
	return chain, nil
}
