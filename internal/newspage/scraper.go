// Package newspage scrapes news links from an HTML listing page.
package newspage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/apodervinskas/Veteran-TestBot/pkg/feedtypes"
	httputil "github.com/apodervinskas/Veteran-TestBot/pkg/http"
)

// Default limits of the scraper
const (
	DefaultLimit   = 6
	DefaultTimeout = 20 * time.Second
)

// Messages are the sentinel lines of the news page scraper. Every failure,
// network or markup, is reported as a parse error.
var Messages = feedtypes.Messages{
	NotConfigured: "⚠️ URL для Мінветеранів не налаштований.",
	Empty:         "ℹ️ Наразі не вдалося знайти новини на сторінці.",
	FetchFailed:   "❌ Помилка парсингу Мінветеранів: %v",
	ParseFailed:   "❌ Помилка парсингу Мінветеранів: %v",
}

// ErrNotHTML is returned when the page response is not an HTML document
var ErrNotHTML = errors.New("response is not an HTML document")

// Scraper downloads a page with colly and extracts links with goquery.
// A new collector is built per call, so a Scraper is safe for concurrent use.
type Scraper struct {
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
}

// NewScraper creates a scraper with the given request timeout and User-Agent
func NewScraper(timeout time.Duration, userAgent string) *Scraper {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = httputil.DefaultConfig().UserAgent
	}
	return &Scraper{
		timeout:   timeout,
		userAgent: userAgent,
		transport: http.DefaultTransport,
	}
}

// Fetch returns up to limit news links from the page at pageURL, or a single
// sentinel line. It never fails.
func (s *Scraper) Fetch(ctx context.Context, pageURL string, limit int) feedtypes.FetchResult {
	pageURL = strings.TrimSpace(pageURL)
	outcome := s.fetch(ctx, pageURL, limit)

	if outcome.Kind != feedtypes.KindOK {
		slog.Warn("News page returned no items", "url", pageURL, "kind", outcome.Kind, "error", outcome.Err)
	}

	return outcome.Result(Messages)
}

func (s *Scraper) fetch(ctx context.Context, pageURL string, limit int) feedtypes.Outcome {
	if pageURL == "" {
		return feedtypes.NotConfigured()
	}

	slog.Debug("Fetching news page", "url", pageURL, "limit", limit)

	// colly builds its requests without a context, so the deadline travels
	// through the transport. The body is fully read before Visit returns.
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c := colly.NewCollector(
		colly.UserAgent(s.userAgent),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.timeout)
	c.WithTransport(&contextTransport{ctx: ctx, base: s.transport})
	// colly fails every status from 203 up on its own. Statuses are checked
	// here instead, so all of 2xx is accepted.
	c.ParseHTTPErrorResponse = true

	var (
		items    []feedtypes.FeedItem
		parsed   bool
		fallback bool
		status   int
	)

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		if parsed || statusErr(status) != nil {
			return
		}
		parsed = true
		items, fallback = Extract(e.DOM, pageURL, limit)
	})

	if err := c.Visit(pageURL); err != nil {
		return feedtypes.Failed(feedtypes.KindFetchFailed, fmt.Errorf("failed to fetch page: %w", err))
	}

	if err := statusErr(status); err != nil {
		return feedtypes.Failed(feedtypes.KindFetchFailed, err)
	}

	if !parsed {
		return feedtypes.Failed(feedtypes.KindParseFailed, ErrNotHTML)
	}

	slog.Debug("Extracted news links", "url", pageURL, "count", len(items), "fallback", fallback)
	return feedtypes.OK(items)
}

// statusErr applies the shared non-2xx rule to a page status
func statusErr(status int) error {
	return httputil.EnsureSuccess(&http.Response{StatusCode: status})
}

// contextTransport binds every outgoing request to the caller's context
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
