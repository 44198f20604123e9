package menu

import (
	"strings"
	"testing"
)

func TestDefaultContent(t *testing.T) {
	content, err := DefaultContent()
	if err != nil {
		t.Fatalf("DefaultContent() error = %v", err)
	}

	if len(content.Sections) != 8 {
		t.Errorf("DefaultContent() has %d sections, want 8", len(content.Sections))
	}

	want := []string{"city-events", "minveterans-news", "facebook"}
	got := content.SourceNames()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("SourceNames() = %v, want %v", got, want)
	}
}

const validMenu = `
welcome: Welcome
home_prompt: Home
fallback: Fallback
back_button: Back
main_keyboard:
  - ["A", "B"]
replies:
  - {button: "B", text: "reply"}
sections:
  - key: a
    button: "A"
    text: "Section A"
    placeholder: "soon"
    items:
      - {label: "one", data: "a:one"}
      - {label: "two", data: "a:two", header: "H", source: src}
`

func TestLoadContent(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "valid", yaml: validMenu},
		{name: "not yaml", yaml: "welcome: [", wantErr: "error parsing menu"},
		{name: "missing welcome", yaml: strings.Replace(validMenu, "welcome: Welcome", "welcome: ''", 1), wantErr: "welcome"},
		{name: "missing fallback", yaml: strings.Replace(validMenu, "fallback: Fallback", "", 1), wantErr: "fallback"},
		{
			name:    "button without handler",
			yaml:    strings.Replace(validMenu, `["A", "B"]`, `["A", "B", "C"]`, 1),
			wantErr: `"C" has no handler`,
		},
		{
			name:    "handler without button",
			yaml:    strings.Replace(validMenu, `button: "A"`, `button: "Z"`, 1),
			wantErr: "not on the main keyboard",
		},
		{
			name:    "callback outside section",
			yaml:    strings.Replace(validMenu, `data: "a:one"`, `data: "b:one"`, 1),
			wantErr: "outside section",
		},
		{
			name:    "duplicate callback",
			yaml:    strings.Replace(validMenu, `data: "a:two"`, `data: "a:one"`, 1),
			wantErr: "duplicate callback",
		},
		{
			name:    "source without header",
			yaml:    strings.Replace(validMenu, `header: "H", `, "", 1),
			wantErr: "no header",
		},
		{
			name:    "item without text or placeholder",
			yaml:    strings.Replace(validMenu, `placeholder: "soon"`, "", 1),
			wantErr: "no placeholder",
		},
		{
			name:    "invalid section key",
			yaml:    strings.Replace(validMenu, "key: a", "key: 'a:b'", 1),
			wantErr: "invalid section key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadContent([]byte(tt.yaml))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("LoadContent() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadContent() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestContent_SourceHeader(t *testing.T) {
	content, err := DefaultContent()
	if err != nil {
		t.Fatalf("DefaultContent() error = %v", err)
	}

	header, ok := content.SourceHeader("facebook")
	if !ok || header != "📘 <b>Facebook Управління</b>" {
		t.Errorf("SourceHeader(facebook) = %q, %v", header, ok)
	}

	if _, ok := content.SourceHeader("minveterans-rss"); ok {
		t.Error("SourceHeader(minveterans-rss) should not be on the menu")
	}
}
