package newspage

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/apodervinskas/Veteran-TestBot/pkg/feedtypes"
	"github.com/apodervinskas/Veteran-TestBot/pkg/urlutils"
)

// PrimarySelectors are tried in order. The first one that yields an accepted
// anchor produces the whole result.
var PrimarySelectors = []string{
	"article a",
	".views-row a",
	".news a",
}

// FallbackSelector scans every anchor on the page
const FallbackSelector = "a[href]"

// Minimum number of characters in an accepted title. The fallback pass
// scans every anchor and asks for one more.
const (
	MinTitleLength         = 6
	FallbackMinTitleLength = MinTitleLength + 1
)

// CommentFragment marks links into comment threads, skipped by the primary pass
const CommentFragment = "#comment"

// Extract runs the primary pass and, only when it accepts nothing, the
// fallback pass over root. Links are resolved against pageURL and must stay
// on its origin.
func Extract(root *goquery.Selection, pageURL string, limit int) (items []feedtypes.FeedItem, fallback bool) {
	if limit <= 0 {
		return nil, false
	}

	for _, selector := range PrimarySelectors {
		items = collect(root.Find(selector), pageURL, limit, MinTitleLength, true)
		if len(items) > 0 {
			return items, false
		}
	}

	return collect(root.Find(FallbackSelector), pageURL, limit, FallbackMinTitleLength, false), true
}

// collect accepts anchors in document order until limit items are found
func collect(anchors *goquery.Selection, pageURL string, limit, minTitle int, skipComments bool) []feedtypes.FeedItem {
	var items []feedtypes.FeedItem

	anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if item, ok := accept(a, pageURL, minTitle, skipComments); ok {
			items = append(items, item)
		}
		return len(items) < limit
	})

	return items
}

func accept(a *goquery.Selection, pageURL string, minTitle int, skipComments bool) (feedtypes.FeedItem, bool) {
	title := normalizeTitle(a.Text())
	if title == "" || utf8.RuneCountInString(title) < minTitle {
		return feedtypes.FeedItem{}, false
	}

	href, _ := a.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return feedtypes.FeedItem{}, false
	}

	link, err := urlutils.ResolveURL(pageURL, href)
	if err != nil || !urlutils.SameOrigin(link, pageURL) {
		return feedtypes.FeedItem{}, false
	}

	if skipComments && strings.Contains(link, CommentFragment) {
		return feedtypes.FeedItem{}, false
	}

	return feedtypes.FeedItem{Title: title, URL: link}, true
}

// normalizeTitle trims the anchor text and collapses inner whitespace
func normalizeTitle(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
