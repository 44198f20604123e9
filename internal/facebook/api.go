// Package facebook reads recent posts of a Facebook page through the Graph API.
package facebook

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/apodervinskas/Veteran-TestBot/pkg/api"
	httputil "github.com/apodervinskas/Veteran-TestBot/pkg/http"
)

const (
	// DefaultGraphURL is the Graph API host
	DefaultGraphURL = "https://graph.facebook.com"

	// DefaultAPIVersion is the Graph API version used for requests
	DefaultAPIVersion = "v19.0"

	// accessTokenParam is the query parameter carrying the page token
	accessTokenParam = "access_token"
)

// GraphAPI issues requests to the Graph API posts endpoint
type GraphAPI struct {
	client  *httputil.Client
	limiter api.RateLimiter
	baseURL string
	version string
}

// NewGraphAPI creates a Graph API client. Empty baseURL and version fall back
// to the defaults.
func NewGraphAPI(client *httputil.Client, baseURL, version string) *GraphAPI {
	if client == nil {
		client = httputil.NewClient(nil)
	}
	if baseURL == "" {
		baseURL = DefaultGraphURL
	}
	if version == "" {
		version = DefaultAPIVersion
	}
	return &GraphAPI{
		client:  client,
		limiter: api.NoOpRateLimiter{},
		baseURL: strings.TrimRight(baseURL, "/"),
		version: strings.Trim(version, "/"),
	}
}

// WithRateLimiter spaces out Graph API calls with rl
func (g *GraphAPI) WithRateLimiter(rl api.RateLimiter) *GraphAPI {
	g.limiter = rl
	return g
}

// FetchPosts performs one GET of /{version}/{pageID}/posts with the given limit
func (g *GraphAPI) FetchPosts(ctx context.Context, pageID string, tokens oauth2.TokenSource, limit int) ([]Post, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	token, err := tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get page access token: %w", err)
	}

	query := url.Values{}
	query.Set(accessTokenParam, token.AccessToken)
	query.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/%s/%s/posts?%s", g.baseURL, g.version, url.PathEscape(pageID), query.Encode())

	var response PostsResponse
	if err := api.GetAndDecode(ctx, g.client, endpoint, &response, nil); err != nil {
		return nil, &redactedError{err: err, secret: token.AccessToken}
	}

	slog.Debug("Fetched Facebook posts", "page", pageID, "count", len(response.Data))
	return response.Data, nil
}

// StaticToken wraps a long-lived page token as a token source
func StaticToken(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
}

// redactedError hides the access token in error text, which is shown to chat users
type redactedError struct {
	err    error
	secret string
}

func (e *redactedError) Error() string {
	msg := e.err.Error()
	if e.secret == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, url.QueryEscape(e.secret), "REDACTED")
	return strings.ReplaceAll(msg, e.secret, "REDACTED")
}

func (e *redactedError) Unwrap() error {
	return e.err
}
