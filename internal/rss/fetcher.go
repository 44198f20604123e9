// Package rss reads syndication feeds (RSS, Atom, JSON Feed) into display items.
package rss

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/apodervinskas/Veteran-TestBot/pkg/feedtypes"
	httputil "github.com/apodervinskas/Veteran-TestBot/pkg/http"
	"github.com/apodervinskas/Veteran-TestBot/pkg/urlutils"
)

// UntitledTitle replaces a missing entry title
const UntitledTitle = "Без назви"

// Messages are the sentinel lines of the RSS fetcher
var Messages = feedtypes.Messages{
	NotConfigured: "⚠️ RSS-стрічка не налаштована.",
	Empty:         "ℹ️ Наразі немає нових публікацій.",
	FetchFailed:   "❌ Помилка завантаження RSS: %v",
	ParseFailed:   "❌ Помилка завантаження RSS: %v",
}

// Fetcher downloads and parses a feed. It keeps no state between calls.
type Fetcher struct {
	client *httputil.Client
}

// NewFetcher creates a feed fetcher on top of the given HTTP client
func NewFetcher(client *httputil.Client) *Fetcher {
	if client == nil {
		client = httputil.NewClient(nil)
	}
	return &Fetcher{client: client}
}

// Fetch returns the first limit entries of the feed at feedURL in document
// order, or a single sentinel line. It never fails.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string, limit int) feedtypes.FetchResult {
	outcome := f.fetch(ctx, strings.TrimSpace(feedURL), limit)

	if outcome.Kind != feedtypes.KindOK {
		slog.Warn("RSS feed returned no items", "url", feedURL, "kind", outcome.Kind, "error", outcome.Err)
	} else {
		slog.Debug("Fetched RSS feed", "url", feedURL, "count", len(outcome.Items))
	}

	return outcome.Result(Messages)
}

func (f *Fetcher) fetch(ctx context.Context, feedURL string, limit int) feedtypes.Outcome {
	if feedURL == "" {
		return feedtypes.NotConfigured()
	}

	slog.Debug("Fetching RSS feed", "url", feedURL, "limit", limit)

	resp, err := f.client.GetWithContext(ctx, feedURL)
	if err != nil {
		return feedtypes.Failed(feedtypes.KindFetchFailed, err)
	}
	defer httputil.CloseBody(resp)

	if err := httputil.EnsureSuccess(resp); err != nil {
		return feedtypes.Failed(feedtypes.KindFetchFailed, err)
	}

	// gofeed parsers keep per-document state, so each call gets its own
	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, httputil.MaxBodyBytes))
	if err != nil {
		return feedtypes.Failed(feedtypes.KindParseFailed, err)
	}

	return feedtypes.OK(convertItems(feedURL, feed.Items, limit))
}

// convertItems maps the first limit entries to display items, keeping feed order
func convertItems(feedURL string, entries []*gofeed.Item, limit int) []feedtypes.FeedItem {
	if limit < 0 {
		limit = 0
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	items := make([]feedtypes.FeedItem, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}

		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = UntitledTitle
		}

		items = append(items, feedtypes.FeedItem{
			Title: title,
			URL:   entryLink(feedURL, entry),
		})
	}

	return items
}

// entryLink returns the entry link resolved against the feed URL, or "" when absent
func entryLink(feedURL string, entry *gofeed.Item) string {
	link := strings.TrimSpace(entry.Link)
	if link == "" && len(entry.Links) > 0 {
		link = strings.TrimSpace(entry.Links[0])
	}
	if link == "" {
		return ""
	}

	resolved, err := urlutils.ResolveURL(feedURL, link)
	if err != nil {
		return link
	}
	return resolved
}
