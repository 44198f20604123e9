package facebook

import (
	"context"
	"fmt"

	"github.com/apodervinskas/Veteran-TestBot/pkg/api"
	"github.com/apodervinskas/Veteran-TestBot/pkg/feedtypes"
	httputil "github.com/apodervinskas/Veteran-TestBot/pkg/http"
	"github.com/apodervinskas/Veteran-TestBot/pkg/providers"
)

// ProviderName is the registry key of the Facebook provider
const ProviderName = "facebook"

// Source binds a page id, token and limit to a Fetcher
type Source struct {
	config  Config
	fetcher *Fetcher
}

// NewSource creates a configured Facebook page source
func NewSource(config Config) *Source {
	if config.Limit == 0 {
		config.Limit = DefaultLimit
	}

	httpConfig := httputil.DefaultConfig()
	httpConfig.Timeout = DefaultTimeout
	if config.Timeout > 0 {
		httpConfig.Timeout = config.Timeout
	}
	if config.UserAgent != "" {
		httpConfig.UserAgent = config.UserAgent
	}

	graph := NewGraphAPI(httputil.NewClient(httpConfig), config.GraphURL, config.APIVersion).
		WithRateLimiter(api.NewRateLimiter(config.MinInterval))
	return &Source{
		config:  config,
		fetcher: NewFetcher(graph),
	}
}

// Fetch implements providers.Source
func (s *Source) Fetch(ctx context.Context) feedtypes.FetchResult {
	return s.fetcher.Fetch(ctx, s.config.PageID, s.config.Token, s.config.Limit)
}

// Metadata implements providers.Source. The token is never exposed.
func (s *Source) Metadata() providers.SourceMetadata {
	location := ""
	if s.config.PageID != "" {
		location = PostBaseURL + s.config.PageID
	}
	return providers.SourceMetadata{
		Name:       s.config.Name,
		Kind:       ProviderName,
		Title:      s.config.Title,
		Location:   location,
		Configured: s.config.PageID != "" && s.config.Token != "",
	}
}

func init() {
	providers.RegisterProvider(ProviderName, &providers.ProviderInfo{
		Name:        "Facebook",
		Description: "Latest posts of a Facebook page via the Graph API",
		Factory: func(config any) (providers.Source, error) {
			cfg, ok := config.(*Config)
			if !ok {
				return nil, fmt.Errorf("facebook: unexpected config type %T", config)
			}
			return NewSource(*cfg), nil
		},
	})
}
