package menu

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/apodervinskas/Veteran-TestBot/pkg/providers"
)

// homeCallback returns to the main menu from any inline keyboard
const homeCallback = "nav:home"

// ActionKind tells how a user action arrived
type ActionKind int

// Action kinds
const (
	ActionStart ActionKind = iota
	ActionText
	ActionCallback
)

func (k ActionKind) String() string {
	switch k {
	case ActionStart:
		return "start"
	case ActionText:
		return "text"
	case ActionCallback:
		return "callback"
	default:
		return fmt.Sprintf("action(%d)", int(k))
	}
}

// Action is a transport-neutral user action: the /start command, a text
// message or an inline button press carrying callback data.
type Action struct {
	Kind ActionKind
	Key  string
}

// Button is an inline keyboard button
type Button struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Response is one message operation. Edit responses replace the message that
// carried the callback; the rest are sent as new messages.
type Response struct {
	Edit   bool       `json:"edit,omitempty"`
	Text   string     `json:"text"`
	Reply  [][]string `json:"reply,omitempty"`  // reply keyboard
	Inline [][]Button `json:"inline,omitempty"` // inline keyboard
}

// SourceLookup finds configured content sources by name
type SourceLookup interface {
	Get(name string) (providers.Source, bool)
}

type handlerFunc func(ctx context.Context, key string) []Response

// Router maps actions to handlers through fixed dispatch tables built from
// the menu content.
type Router struct {
	content   *Content
	sources   SourceLookup
	texts     map[string]handlerFunc
	callbacks map[string]handlerFunc
	prefixes  map[string]handlerFunc
}

// NewRouter builds the dispatch tables. Every source named by the menu must
// be present in sources.
func NewRouter(content *Content, sources SourceLookup) (*Router, error) {
	if content == nil {
		return nil, fmt.Errorf("menu content is nil")
	}

	for _, name := range content.SourceNames() {
		if sources == nil {
			return nil, fmt.Errorf("menu references source %s but no sources are configured", name)
		}
		if _, ok := sources.Get(name); !ok {
			return nil, fmt.Errorf("menu references unknown source %s", name)
		}
	}

	r := &Router{
		content:   content,
		sources:   sources,
		texts:     make(map[string]handlerFunc),
		callbacks: make(map[string]handlerFunc),
		prefixes:  make(map[string]handlerFunc),
	}

	r.callbacks[homeCallback] = r.home

	for _, reply := range content.Replies {
		r.texts[reply.Button] = r.sendText(reply.Text)
	}

	for _, section := range content.Sections {
		keyboard := r.sectionKeyboard(section)

		r.texts[section.Button] = func(context.Context, string) []Response {
			return []Response{{Text: section.Text, Inline: keyboard}}
		}

		for _, item := range section.Items {
			switch {
			case item.Source != "":
				r.callbacks[item.Data] = r.sourcePage(item, keyboard)
			case item.Text != "":
				r.callbacks[item.Data] = r.editText(item.Text, keyboard)
			}
		}

		if section.Placeholder != "" {
			r.prefixes[section.Key] = r.editText(section.Placeholder, keyboard)
		}
	}

	return r, nil
}

// Handle dispatches an action and returns the responses to deliver in order.
// It always returns at least one response.
func (r *Router) Handle(ctx context.Context, action Action) []Response {
	key := strings.TrimSpace(action.Key)
	slog.Debug("Handling action", "kind", action.Kind, "key", key)

	switch action.Kind {
	case ActionStart:
		return r.start(ctx, key)
	case ActionText:
		if handler, ok := r.texts[key]; ok {
			return handler(ctx, key)
		}
	case ActionCallback:
		if handler, ok := r.callbacks[key]; ok {
			return handler(ctx, key)
		}
		prefix, _, found := strings.Cut(key, ":")
		if handler, ok := r.prefixes[prefix]; found && ok {
			return handler(ctx, key)
		}
	}

	return r.fallback(ctx, key)
}

// MainKeyboard returns the reply keyboard rows
func (r *Router) MainKeyboard() [][]string {
	return r.content.MainKeyboard
}

func (r *Router) start(context.Context, string) []Response {
	return []Response{{Text: r.content.Welcome, Reply: r.content.MainKeyboard}}
}

func (r *Router) home(context.Context, string) []Response {
	return []Response{
		{Edit: true, Text: r.content.Welcome},
		{Text: r.content.HomePrompt, Reply: r.content.MainKeyboard},
	}
}

func (r *Router) fallback(context.Context, string) []Response {
	return []Response{{Text: r.content.Fallback, Reply: r.content.MainKeyboard}}
}

func (r *Router) sendText(text string) handlerFunc {
	return func(context.Context, string) []Response {
		return []Response{{Text: text}}
	}
}

func (r *Router) editText(text string, keyboard [][]Button) handlerFunc {
	return func(context.Context, string) []Response {
		return []Response{{Edit: true, Text: text, Inline: keyboard}}
	}
}

// sourcePage fetches the item's source on every call; nothing is cached
func (r *Router) sourcePage(item Item, keyboard [][]Button) handlerFunc {
	return func(ctx context.Context, _ string) []Response {
		src, _ := r.sources.Get(item.Source)
		result := src.Fetch(ctx)

		slog.Info("Rendered source page", "source", item.Source, "lines", result.Len(), "sentinel", result.IsSentinel())
		return []Response{{Edit: true, Text: Render(item.Header, result), Inline: keyboard}}
	}
}

// sectionKeyboard lays out one item per row followed by the home button
func (r *Router) sectionKeyboard(section Section) [][]Button {
	rows := make([][]Button, 0, len(section.Items)+1)
	for _, item := range section.Items {
		rows = append(rows, []Button{{Label: item.Label, Data: item.Data}})
	}
	return append(rows, []Button{{Label: r.content.BackButton, Data: homeCallback}})
}
