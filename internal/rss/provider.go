package rss

import (
	"context"
	"fmt"
	"time"

	"github.com/apodervinskas/Veteran-TestBot/pkg/feedtypes"
	httputil "github.com/apodervinskas/Veteran-TestBot/pkg/http"
	"github.com/apodervinskas/Veteran-TestBot/pkg/providers"
)

// ProviderName is the registry key of the RSS provider
const ProviderName = "rss"

// Config holds the settings of one configured feed
type Config struct {
	Name      string
	Title     string
	FeedURL   string
	Limit     int
	Timeout   time.Duration
	UserAgent string
}

// Source binds a feed URL and limit to a Fetcher
type Source struct {
	config  Config
	fetcher *Fetcher
}

// NewSource creates a configured RSS source
func NewSource(config Config) *Source {
	httpConfig := httputil.DefaultConfig()
	if config.Timeout > 0 {
		httpConfig.Timeout = config.Timeout
	}
	if config.UserAgent != "" {
		httpConfig.UserAgent = config.UserAgent
	}
	httpConfig.Headers["Accept"] = "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8"

	return &Source{
		config:  config,
		fetcher: NewFetcher(httputil.NewClient(httpConfig)),
	}
}

// Fetch implements providers.Source
func (s *Source) Fetch(ctx context.Context) feedtypes.FetchResult {
	return s.fetcher.Fetch(ctx, s.config.FeedURL, s.config.Limit)
}

// Metadata implements providers.Source
func (s *Source) Metadata() providers.SourceMetadata {
	return providers.SourceMetadata{
		Name:       s.config.Name,
		Kind:       ProviderName,
		Title:      s.config.Title,
		Location:   s.config.FeedURL,
		Configured: s.config.FeedURL != "",
	}
}

func init() {
	providers.RegisterProvider(ProviderName, &providers.ProviderInfo{
		Name:        "RSS",
		Description: "Syndication feed reader (RSS, Atom, JSON Feed)",
		Factory: func(config any) (providers.Source, error) {
			cfg, ok := config.(*Config)
			if !ok {
				return nil, fmt.Errorf("rss: unexpected config type %T", config)
			}
			return NewSource(*cfg), nil
		},
	})
}
