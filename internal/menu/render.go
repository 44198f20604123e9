package menu

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/apodervinskas/Veteran-TestBot/pkg/feedtypes"
)

// MaxMessageLength is Telegram's limit on the text of one message
const MaxMessageLength = 4096

// Bullet prefixes every rendered item
const Bullet = "• "

// RenderItem renders one item as a bullet with an HTML link. Items without a
// URL are rendered as plain text.
func RenderItem(item feedtypes.FeedItem) string {
	title := html.EscapeString(item.Title)
	if item.URL == "" {
		return Bullet + title
	}
	return Bullet + `<a href="` + html.EscapeString(item.URL) + `">` + title + `</a>`
}

// RenderLines renders a fetch result as message lines. A sentinel becomes one
// escaped plain line.
func RenderLines(result feedtypes.FetchResult) []string {
	if result.IsSentinel() {
		return []string{html.EscapeString(result.Sentinel)}
	}

	lines := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		lines = append(lines, RenderItem(item))
	}
	return lines
}

// Ellipsis marks a title cut to fit the message limit
const Ellipsis = "…"

// Render joins header and lines as "<header>\n\n<line>\n<line>...". Trailing
// lines that would push the message past MaxMessageLength are dropped. The
// first line is always kept, with its title cut when it alone is too long.
func Render(header string, result feedtypes.FetchResult) string {
	lines := RenderLines(result)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	length := utf8.RuneCountInString(header) + 2

	if len(lines) > 0 && length+utf8.RuneCountInString(lines[0]) > MaxMessageLength {
		lines[0] = fitFirstLine(result, MaxMessageLength-length)
	}

	for i, line := range lines {
		add := utf8.RuneCountInString(line)
		if i > 0 {
			add++
		}
		if i > 0 && length+add > MaxMessageLength {
			break
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		length += add
	}

	return b.String()
}

// fitFirstLine renders the first line of result with its text cut, before
// escaping, until the rendered line fits in budget runes
func fitFirstLine(result feedtypes.FetchResult, budget int) string {
	text := result.Sentinel
	render := html.EscapeString
	if !result.IsSentinel() {
		item := result.Items[0]
		text = item.Title
		if utf8.RuneCountInString(RenderItem(feedtypes.FeedItem{Title: Ellipsis, URL: item.URL})) > budget {
			// the link alone does not fit
			item.URL = ""
		}
		render = func(title string) string {
			return RenderItem(feedtypes.FeedItem{Title: title, URL: item.URL})
		}
	}

	if line := render(text); utf8.RuneCountInString(line) <= budget {
		return line
	}

	runes := []rune(text)
	for len(runes) > 0 {
		line := render(string(runes) + Ellipsis)
		over := utf8.RuneCountInString(line) - budget
		if over <= 0 {
			return line
		}
		// escaping never shortens text, so at least over runes must go
		runes = runes[:len(runes)-min(over, len(runes))]
	}
	return render(Ellipsis)
}
