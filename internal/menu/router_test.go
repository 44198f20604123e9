package menu

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/apodervinskas/Veteran-TestBot/pkg/feedtypes"
	"github.com/apodervinskas/Veteran-TestBot/pkg/providers"
)

type stubSource struct {
	name   string
	result feedtypes.FetchResult
	calls  atomic.Int32
}

func (s *stubSource) Fetch(ctx context.Context) feedtypes.FetchResult {
	s.calls.Add(1)
	return s.result
}

func (s *stubSource) Metadata() providers.SourceMetadata {
	return providers.SourceMetadata{Name: s.name}
}

type stubLookup map[string]*stubSource

func (l stubLookup) Get(name string) (providers.Source, bool) {
	src, ok := l[name]
	if !ok {
		return nil, false
	}
	return src, true
}

func newTestRouter(t *testing.T) (*Router, stubLookup) {
	t.Helper()

	content, err := DefaultContent()
	if err != nil {
		t.Fatalf("DefaultContent() error = %v", err)
	}

	sources := stubLookup{
		"city-events": {name: "city-events", result: feedtypes.FetchResult{Items: []feedtypes.FeedItem{
			{Title: "Концерт для ветеранів", URL: "https://dnipro.example/events/1"},
		}}},
		"minveterans-news": {name: "minveterans-news", result: feedtypes.FetchResult{Sentinel: "⚠️ URL для Мінветеранів не налаштований."}},
		"facebook":         {name: "facebook", result: feedtypes.FetchResult{Items: []feedtypes.FeedItem{{Title: "Hello", URL: "https://www.facebook.com/123/posts/456"}}}},
	}

	router, err := NewRouter(content, sources)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return router, sources
}

func single(t *testing.T, responses []Response) Response {
	t.Helper()
	if len(responses) != 1 {
		t.Fatalf("Handle() returned %d responses, want 1", len(responses))
	}
	return responses[0]
}

func TestRouter_Start(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := single(t, router.Handle(context.Background(), Action{Kind: ActionStart}))
	if resp.Edit {
		t.Error("start response should be a new message")
	}
	if !strings.HasPrefix(resp.Text, "👋 Вітаємо") {
		t.Errorf("start text = %q", resp.Text)
	}
	if len(resp.Reply) != 5 || len(resp.Reply[0]) != 2 {
		t.Errorf("start keyboard = %v, want 5 rows of 2", resp.Reply)
	}
}

func TestRouter_MainKeyboardButtons(t *testing.T) {
	router, _ := newTestRouter(t)
	fallback := router.content.Fallback

	for _, row := range router.MainKeyboard() {
		for _, label := range row {
			t.Run(label, func(t *testing.T) {
				resp := single(t, router.Handle(context.Background(), Action{Kind: ActionText, Key: label}))
				if resp.Text == fallback {
					t.Errorf("button %q fell through to the fallback", label)
				}
				if resp.Edit {
					t.Errorf("button %q should send a new message", label)
				}
			})
		}
	}
}

func TestRouter_SectionKeyboard(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := single(t, router.Handle(context.Background(), Action{Kind: ActionText, Key: "4⃣ Новини та події"}))
	if !strings.Contains(resp.Text, "Новини та події") {
		t.Errorf("news text = %q", resp.Text)
	}

	want := []string{"news:city", "news:minv", "news:fb", "nav:home"}
	if len(resp.Inline) != len(want) {
		t.Fatalf("news keyboard has %d rows, want %d", len(resp.Inline), len(want))
	}
	for i, data := range want {
		if len(resp.Inline[i]) != 1 || resp.Inline[i][0].Data != data {
			t.Errorf("news keyboard row %d = %v, want %s", i, resp.Inline[i], data)
		}
	}
	if resp.Inline[3][0].Label != "⬅ Головне меню" {
		t.Errorf("back button label = %q", resp.Inline[3][0].Label)
	}
}

func TestRouter_SourcePages(t *testing.T) {
	router, sources := newTestRouter(t)

	tests := []struct {
		data   string
		source string
		want   string
	}{
		{
			data:   "news:city",
			source: "city-events",
			want:   "📣 <b>Анонси заходів (місто)</b>\n\n• <a href=\"https://dnipro.example/events/1\">Концерт для ветеранів</a>",
		},
		{
			data:   "news:minv",
			source: "minveterans-news",
			want:   "🗞 <b>Останні новини (Мінветеранів)</b>\n\n⚠️ URL для Мінветеранів не налаштований.",
		},
		{
			data:   "news:fb",
			source: "facebook",
			want:   "📘 <b>Facebook Управління</b>\n\n• <a href=\"https://www.facebook.com/123/posts/456\">Hello</a>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			before := sources[tt.source].calls.Load()

			resp := single(t, router.Handle(context.Background(), Action{Kind: ActionCallback, Key: tt.data}))
			if !resp.Edit {
				t.Error("source page should edit the message")
			}
			if resp.Text != tt.want {
				t.Errorf("source page text = %q, want %q", resp.Text, tt.want)
			}
			if len(resp.Inline) != 4 {
				t.Errorf("source page keeps the news keyboard, got %d rows", len(resp.Inline))
			}
			if got := sources[tt.source].calls.Load() - before; got != 1 {
				t.Errorf("source fetched %d times, want 1", got)
			}
		})
	}

	// Each press fetches again
	router.Handle(context.Background(), Action{Kind: ActionCallback, Key: "news:city"})
	if got := sources["city-events"].calls.Load(); got != 2 {
		t.Errorf("city-events fetched %d times after two presses, want 2", got)
	}
}

func TestRouter_Callbacks(t *testing.T) {
	router, _ := newTestRouter(t)
	fallback := router.content.Fallback

	tests := []struct {
		name       string
		data       string
		wantText   string
		wantPrefix string
		wantRows   int
		wantEdit   bool
	}{
		{name: "about item", data: "about:mission", wantPrefix: "🎯 <b>Місія та візія</b>", wantRows: 4, wantEdit: true},
		{name: "unknown about item", data: "about:history", wantText: "ℹ️ Інформація буде додана найближчим часом.", wantRows: 4, wantEdit: true},
		{name: "services placeholder", data: "svc:list", wantText: "ℹ️ Контент цього розділу буде додано найближчим часом.", wantRows: 8, wantEdit: true},
		{name: "programs placeholder", data: "prog:jobs", wantText: "ℹ️ Контент цього розділу буде додано найближчим часом.", wantRows: 8, wantEdit: true},
		{name: "psychology placeholder", data: "psy:chat", wantText: "ℹ️ Контент цього розділу буде додано найближчим часом.", wantRows: 5, wantEdit: true},
		{name: "faq placeholder", data: "faq:common", wantText: "ℹ️ Контент цього розділу буде додано найближчим часом.", wantRows: 3, wantEdit: true},
		{name: "feedback placeholder", data: "fb:review", wantText: "ℹ️ Контент цього розділу буде додано найближчим часом.", wantRows: 4, wantEdit: true},
		{name: "legal contacts", data: "law:contacts", wantPrefix: "📚 <b>Контакти юристів</b>\n\n📌", wantRows: 4, wantEdit: true},
		{name: "unknown legal item", data: "law:unknown", wantText: fallback},
		{name: "unknown news item", data: "news:unknown", wantText: fallback},
		{name: "no prefix", data: "garbage", wantText: fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := single(t, router.Handle(context.Background(), Action{Kind: ActionCallback, Key: tt.data}))

			if tt.wantText != "" && resp.Text != tt.wantText {
				t.Errorf("Handle(%s) text = %q, want %q", tt.data, resp.Text, tt.wantText)
			}
			if tt.wantPrefix != "" && !strings.HasPrefix(resp.Text, tt.wantPrefix) {
				t.Errorf("Handle(%s) text = %q, want prefix %q", tt.data, resp.Text, tt.wantPrefix)
			}
			if resp.Edit != tt.wantEdit {
				t.Errorf("Handle(%s) edit = %v, want %v", tt.data, resp.Edit, tt.wantEdit)
			}
			if len(resp.Inline) != tt.wantRows {
				t.Errorf("Handle(%s) inline rows = %d, want %d", tt.data, len(resp.Inline), tt.wantRows)
			}
			if resp.Text == fallback && len(resp.Reply) == 0 {
				t.Errorf("Handle(%s) fallback should carry the main keyboard", tt.data)
			}
		})
	}
}

func TestRouter_Home(t *testing.T) {
	router, _ := newTestRouter(t)

	responses := router.Handle(context.Background(), Action{Kind: ActionCallback, Key: "nav:home"})
	if len(responses) != 2 {
		t.Fatalf("Handle(nav:home) returned %d responses, want 2", len(responses))
	}

	if !responses[0].Edit || responses[0].Text != router.content.Welcome || responses[0].Inline != nil {
		t.Errorf("first home response = %+v, want edit to welcome without keyboard", responses[0])
	}
	if responses[1].Edit || responses[1].Text != "⬇️ Головне меню" || len(responses[1].Reply) == 0 {
		t.Errorf("second home response = %+v, want new message with main keyboard", responses[1])
	}
}

func TestRouter_Fallback(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, text := range []string{"привіт", "", "/help"} {
		resp := single(t, router.Handle(context.Background(), Action{Kind: ActionText, Key: text}))
		if resp.Text != router.content.Fallback {
			t.Errorf("Handle(%q) text = %q, want fallback", text, resp.Text)
		}
		if len(resp.Reply) == 0 {
			t.Errorf("Handle(%q) fallback has no keyboard", text)
		}
	}
}

func TestNewRouter_UnknownSource(t *testing.T) {
	content, err := DefaultContent()
	if err != nil {
		t.Fatalf("DefaultContent() error = %v", err)
	}

	if _, err := NewRouter(content, stubLookup{}); err == nil {
		t.Error("NewRouter() with missing sources should fail")
	}
	if _, err := NewRouter(content, nil); err == nil {
		t.Error("NewRouter() with nil lookup should fail")
	}
	if _, err := NewRouter(nil, stubLookup{}); err == nil {
		t.Error("NewRouter() with nil content should fail")
	}
}
