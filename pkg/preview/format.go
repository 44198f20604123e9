// Package preview provides interactive source preview functionality using Bubble Tea TUI.
package preview

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/apodervinskas/Veteran-TestBot/pkg/feedtypes"
	"github.com/apodervinskas/Veteran-TestBot/pkg/providers"
)

const separator = "═══════════════════════════════════════════════════════════════════════\n"

// wrapText wraps text to the specified width, breaking at word boundaries when possible
func wrapText(text string, width int) string {
	if width <= 0 {
		width = 70
	}

	var result strings.Builder
	var line strings.Builder
	lineLen := 0

	words := strings.Fields(text)
	for i, word := range words {
		wordLen := utf8.RuneCountInString(word)

		// If adding this word would exceed width, start a new line
		if lineLen > 0 && lineLen+1+wordLen > width {
			result.WriteString(line.String())
			result.WriteString("\n")
			line.Reset()
			lineLen = 0
		}

		if lineLen > 0 {
			line.WriteString(" ")
			lineLen++
		}

		line.WriteString(word)
		lineLen += wordLen

		if i == len(words)-1 {
			result.WriteString(line.String())
		}
	}

	return result.String()
}

// truncate shortens s to max runes, marking the cut with "..."
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// hostOf returns the host of a link, or "no link"
func hostOf(link string) string {
	if link == "" {
		return "no link"
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return link
	}
	return u.Host
}

// FormatCompactListItem formats a single item in compact list format
// Example: " 1. Концерт для ветеранів  [dnipro.example]"
func FormatCompactListItem(index int, item feedtypes.FeedItem) string {
	const maxTitleLength = 70
	return fmt.Sprintf("%2d. %s  [%s]", index+1, truncate(item.Title, maxTitleLength), hostOf(item.URL))
}

// FormatDetailedItem formats a single item with its full title and link
func FormatDetailedItem(item feedtypes.FeedItem) string {
	var b strings.Builder

	b.WriteString(separator)
	fmt.Fprintf(&b, "Title: %s\n", wrapText(item.Title, 70))
	if item.URL != "" {
		fmt.Fprintf(&b, "Link: %s\n", item.URL)
	} else {
		b.WriteString("Link: (none)\n")
	}
	b.WriteString(separator)

	return b.String()
}

// FormatSource describes a source and the outcome of fetching it
func FormatSource(meta providers.SourceMetadata, result feedtypes.FetchResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s)\n", meta.Title, meta.Name)
	if meta.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", meta.Location)
	}
	if !meta.Configured {
		b.WriteString("Not configured\n")
	}

	if result.IsSentinel() {
		fmt.Fprintf(&b, "Result: %s\n", result.Sentinel)
	} else {
		fmt.Fprintf(&b, "Result: %d items\n", len(result.Items))
	}

	return b.String()
}

// FormatSourceList formats the configured sources as one line each
func FormatSourceList(sources []providers.SourceMetadata) string {
	var b strings.Builder
	for _, meta := range sources {
		status := "configured"
		if !meta.Configured {
			status = "not configured"
		}
		fmt.Fprintf(&b, "%-18s %-9s %-15s %s\n", meta.Name, meta.Kind, status, meta.Location)
	}
	return b.String()
}

// FormatMessage frames a rendered chat message for the terminal
func FormatMessage(message string) string {
	var b strings.Builder
	b.WriteString(separator)
	b.WriteString(message)
	b.WriteString("\n")
	b.WriteString(separator)
	fmt.Fprintf(&b, "%d characters\n", utf8.RuneCountInString(message))
	return b.String()
}
