// Package feedtypes provides shared type definitions used by the content fetchers.
package feedtypes

import "fmt"

// FeedItem is a single display-ready entry produced by any fetcher.
type FeedItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// FetchResult is what a fetcher hands to the menu: either items in source
// order, or exactly one informational sentinel line.
type FetchResult struct {
	Items    []FeedItem `json:"items,omitempty"`
	Sentinel string     `json:"sentinel,omitempty"`
}

// IsSentinel reports whether the result carries a sentinel instead of items.
func (r FetchResult) IsSentinel() bool {
	return len(r.Items) == 0
}

// Len returns the number of renderable entries; a sentinel counts as one.
func (r FetchResult) Len() int {
	if r.IsSentinel() {
		return 1
	}
	return len(r.Items)
}

// Kind classifies the outcome of a single fetch.
type Kind int

// Outcome kinds
const (
	KindOK Kind = iota
	KindNotConfigured
	KindEmpty
	KindFetchFailed
	KindParseFailed
)

// String returns a short name used in logs
func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotConfigured:
		return "not_configured"
	case KindEmpty:
		return "empty"
	case KindFetchFailed:
		return "fetch_failed"
	case KindParseFailed:
		return "parse_failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the tagged result a fetcher builds internally before it is
// flattened into a FetchResult.
type Outcome struct {
	Kind  Kind
	Items []FeedItem
	Err   error
}

// OK wraps fetched items. Zero items are reported as KindEmpty.
func OK(items []FeedItem) Outcome {
	if len(items) == 0 {
		return Outcome{Kind: KindEmpty}
	}
	return Outcome{Kind: KindOK, Items: items}
}

// NotConfigured reports a source without a configured location or credentials.
func NotConfigured() Outcome {
	return Outcome{Kind: KindNotConfigured}
}

// Failed reports a fetch or parse failure.
func Failed(kind Kind, err error) Outcome {
	return Outcome{Kind: kind, Err: err}
}

// Messages holds the sentinel texts of one fetcher. FetchFailed and
// ParseFailed are printf formats that receive the error.
type Messages struct {
	NotConfigured string
	Empty         string
	FetchFailed   string
	ParseFailed   string
}

// Result flattens the outcome into items or a single sentinel line.
func (o Outcome) Result(m Messages) FetchResult {
	switch o.Kind {
	case KindOK:
		if len(o.Items) > 0 {
			return FetchResult{Items: o.Items}
		}
		return FetchResult{Sentinel: m.Empty}
	case KindNotConfigured:
		return FetchResult{Sentinel: m.NotConfigured}
	case KindFetchFailed:
		return FetchResult{Sentinel: fmt.Sprintf(m.FetchFailed, o.Err)}
	case KindParseFailed:
		return FetchResult{Sentinel: fmt.Sprintf(m.ParseFailed, o.Err)}
	default:
		return FetchResult{Sentinel: m.Empty}
	}
}
