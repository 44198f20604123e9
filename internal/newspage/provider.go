package newspage

import (
	"context"
	"fmt"
	"time"

	"github.com/apodervinskas/Veteran-TestBot/pkg/feedtypes"
	"github.com/apodervinskas/Veteran-TestBot/pkg/providers"
)

// ProviderName is the registry key of the news page provider
const ProviderName = "newspage"

// Config holds the settings of one scraped page
type Config struct {
	Name      string
	Title     string
	PageURL   string
	Limit     int
	Timeout   time.Duration
	UserAgent string
}

// Source binds a page URL and limit to a Scraper
type Source struct {
	config  Config
	scraper *Scraper
}

// NewSource creates a configured news page source
func NewSource(config Config) *Source {
	if config.Limit <= 0 {
		config.Limit = DefaultLimit
	}
	return &Source{
		config:  config,
		scraper: NewScraper(config.Timeout, config.UserAgent),
	}
}

// Fetch implements providers.Source
func (s *Source) Fetch(ctx context.Context) feedtypes.FetchResult {
	return s.scraper.Fetch(ctx, s.config.PageURL, s.config.Limit)
}

// Metadata implements providers.Source
func (s *Source) Metadata() providers.SourceMetadata {
	return providers.SourceMetadata{
		Name:       s.config.Name,
		Kind:       ProviderName,
		Title:      s.config.Title,
		Location:   s.config.PageURL,
		Configured: s.config.PageURL != "",
	}
}

func init() {
	providers.RegisterProvider(ProviderName, &providers.ProviderInfo{
		Name:        "News page",
		Description: "HTML listing page scraper with a structural and a broad pass",
		Factory: func(config any) (providers.Source, error) {
			cfg, ok := config.(*Config)
			if !ok {
				return nil, fmt.Errorf("newspage: unexpected config type %T", config)
			}
			return NewSource(*cfg), nil
		},
	})
}
