package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/apodervinskas/Veteran-TestBot/pkg/feedtypes"
)

const (
	// MinLimit and MaxLimit bound the number of posts requested
	MinLimit = 1
	MaxLimit = 10

	// DefaultLimit is the number of posts requested when none is configured
	DefaultLimit = 5

	// DefaultTimeout bounds a single Graph API call
	DefaultTimeout = 15 * time.Second

	// MaxTitleLength is the maximum number of characters in a post title
	MaxTitleLength = 120

	// UntitledPost replaces an absent post message
	UntitledPost = "Публікація"

	// PostBaseURL is the prefix of public post links
	PostBaseURL = "https://www.facebook.com/"
)

// Messages are the sentinel lines of the Facebook fetcher
var Messages = feedtypes.Messages{
	NotConfigured: "⚠️ Facebook не налаштовано. Додайте FACEBOOK_PAGE_ID і FACEBOOK_TOKEN у .env",
	Empty:         "ℹ️ Поки що немає нових дописів.",
	FetchFailed:   "❌ Помилка Facebook API: %v",
	ParseFailed:   "❌ Помилка Facebook API: %v",
}

// Fetcher turns page posts into display items
type Fetcher struct {
	api *GraphAPI
}

// NewFetcher creates a post fetcher on top of the given Graph API client
func NewFetcher(api *GraphAPI) *Fetcher {
	if api == nil {
		api = NewGraphAPI(nil, "", "")
	}
	return &Fetcher{api: api}
}

// Fetch returns the latest posts of pageID, or a single sentinel line. No
// request is made unless both pageID and token are set. It never fails.
func (f *Fetcher) Fetch(ctx context.Context, pageID, token string, limit int) feedtypes.FetchResult {
	outcome := f.fetch(ctx, strings.TrimSpace(pageID), strings.TrimSpace(token), limit)

	if outcome.Kind != feedtypes.KindOK {
		slog.Warn("Facebook page returned no items", "page", pageID, "kind", outcome.Kind, "error", outcome.Err)
	}

	return outcome.Result(Messages)
}

func (f *Fetcher) fetch(ctx context.Context, pageID, token string, limit int) feedtypes.Outcome {
	if pageID == "" || token == "" {
		return feedtypes.NotConfigured()
	}

	limit = ClampLimit(limit)
	slog.Debug("Fetching Facebook posts", "page", pageID, "limit", limit)

	posts, err := f.api.FetchPosts(ctx, pageID, StaticToken(token), limit)
	if err != nil {
		return feedtypes.Failed(classify(err), err)
	}

	return feedtypes.OK(convertPosts(posts))
}

// ClampLimit bounds limit to [MinLimit, MaxLimit]
func ClampLimit(limit int) int {
	return max(MinLimit, min(limit, MaxLimit))
}

// PostTitle returns the first line of message truncated to MaxTitleLength
// characters, or UntitledPost when it is blank
func PostTitle(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return UntitledPost
	}

	if utf8.RuneCountInString(line) > MaxTitleLength {
		line = strings.TrimSpace(string([]rune(line)[:MaxTitleLength]))
	}
	return line
}

// PostURL maps a Graph post id "{page}_{post}" to its public link
func PostURL(id string) string {
	return PostBaseURL + strings.ReplaceAll(id, "_", "/posts/")
}

func convertPosts(posts []Post) []feedtypes.FeedItem {
	items := make([]feedtypes.FeedItem, 0, len(posts))
	for _, post := range posts {
		id := strings.TrimSpace(post.ID)
		if id == "" {
			continue
		}
		items = append(items, feedtypes.FeedItem{
			Title: PostTitle(post.Message),
			URL:   PostURL(id),
		})
	}
	return items
}

// classify separates malformed bodies from transport and API failures
func classify(err error) feedtypes.Kind {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return feedtypes.KindParseFailed
	}
	return feedtypes.KindFetchFailed
}
