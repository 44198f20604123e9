// Package app wires the configured sources, the menu, the Telegram transport
// and the HTTP server into one application.
package app

import (
	"fmt"
	"log/slog"

	"github.com/apodervinskas/Veteran-TestBot/internal/config"
	"github.com/apodervinskas/Veteran-TestBot/internal/facebook"
	"github.com/apodervinskas/Veteran-TestBot/internal/newspage"
	"github.com/apodervinskas/Veteran-TestBot/internal/rss"
	"github.com/apodervinskas/Veteran-TestBot/pkg/providers"
)

// Source names referenced by the menu content
const (
	SourceCityEvents      = "city-events"
	SourceMinVeteransRSS  = "minveterans-rss"
	SourceMinVeteransNews = "minveterans-news"
	SourceFacebook        = "facebook"
)

// sourceSpec pairs a provider kind with its provider specific config
type sourceSpec struct {
	provider string
	config   any
}

// BuildSources creates every named source from the configuration. Sources
// whose location is not set are still created and answer with their
// not-configured message.
func BuildSources(cfg *config.Config) (*providers.Set, error) {
	ua := cfg.HTTP.UserAgent

	specs := []sourceSpec{
		{
			provider: rss.ProviderName,
			config: &rss.Config{
				Name:      SourceCityEvents,
				Title:     "Анонси заходів (місто)",
				FeedURL:   cfg.RSS.CityDnipro,
				Limit:     cfg.RSS.Limit,
				Timeout:   cfg.RSS.Timeout,
				UserAgent: ua,
			},
		},
		{
			provider: rss.ProviderName,
			config: &rss.Config{
				Name:      SourceMinVeteransRSS,
				Title:     "Новини Мінветеранів (RSS)",
				FeedURL:   cfg.RSS.MinVeterans,
				Limit:     cfg.RSS.Limit,
				Timeout:   cfg.RSS.Timeout,
				UserAgent: ua,
			},
		},
		{
			provider: newspage.ProviderName,
			config: &newspage.Config{
				Name:      SourceMinVeteransNews,
				Title:     "Останні новини (Мінветеранів)",
				PageURL:   cfg.NewsPage.URL,
				Limit:     cfg.NewsPage.Limit,
				Timeout:   cfg.NewsPage.Timeout,
				UserAgent: ua,
			},
		},
		{
			provider: facebook.ProviderName,
			config: &facebook.Config{
				Name:       SourceFacebook,
				Title:      "Facebook Управління",
				GraphURL:   cfg.Facebook.GraphURL,
				APIVersion: cfg.Facebook.APIVersion,
				PageID:     cfg.Facebook.PageID,
				Token:      cfg.Facebook.Token,
				Limit:      cfg.Facebook.PostLimit,
				Timeout:    cfg.Facebook.Timeout,
				UserAgent:  ua,

				MinInterval: cfg.Facebook.MinInterval,
			},
		},
	}

	slog.Debug("Registered source kinds", "kinds", providers.ListProviders())

	set := providers.NewSet()
	for _, spec := range specs {
		src, err := providers.CreateProvider(spec.provider, spec.config)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s source: %w", spec.provider, err)
		}
		if err := set.Add(src); err != nil {
			return nil, err
		}

		meta := src.Metadata()
		if meta.Configured {
			slog.Debug("Configured source", "name", meta.Name, "kind", meta.Kind, "location", meta.Location)
		} else {
			slog.Warn("Source not configured", "name", meta.Name, "kind", meta.Kind)
		}
	}

	return set, nil
}
