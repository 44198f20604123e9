package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate runs the test in an empty directory with none of the bound
// variables set. t.Setenv restores the previous values afterwards.
func isolate(t *testing.T) string {
	t.Helper()

	for _, env := range envBindings {
		t.Setenv(env, "")
		if err := os.Unsetenv(env); err != nil {
			t.Fatalf("Unsetenv(%s) error = %v", env, err)
		}
	}

	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RSS.Limit != 5 {
		t.Errorf("RSS.Limit = %d, want 5", cfg.RSS.Limit)
	}
	if cfg.NewsPage.Limit != 6 {
		t.Errorf("NewsPage.Limit = %d, want 6", cfg.NewsPage.Limit)
	}
	if cfg.Facebook.PostLimit != 5 {
		t.Errorf("Facebook.PostLimit = %d, want 5", cfg.Facebook.PostLimit)
	}
	if cfg.NewsPage.Timeout != 20*time.Second {
		t.Errorf("NewsPage.Timeout = %v, want 20s", cfg.NewsPage.Timeout)
	}
	if cfg.Facebook.Timeout != 15*time.Second {
		t.Errorf("Facebook.Timeout = %v, want 15s", cfg.Facebook.Timeout)
	}
	if cfg.Facebook.GraphURL != "https://graph.facebook.com" || cfg.Facebook.APIVersion != "v19.0" {
		t.Errorf("Facebook graph = %q %q", cfg.Facebook.GraphURL, cfg.Facebook.APIVersion)
	}
	if cfg.Facebook.MinInterval != 0 {
		t.Errorf("Facebook.MinInterval = %v, want 0", cfg.Facebook.MinInterval)
	}
	if cfg.HTTP.ListenAddr != ":8080" {
		t.Errorf("HTTP.ListenAddr = %q, want :8080", cfg.HTTP.ListenAddr)
	}
	if cfg.RSS.CityDnipro != "" || cfg.NewsPage.URL != "" {
		t.Errorf("sources should be unset by default, got %+v %+v", cfg.RSS, cfg.NewsPage)
	}
	if cfg.WebhookMode() {
		t.Error("WebhookMode() = true without webhook URL")
	}

	if err := cfg.Validate(false); err != nil {
		t.Errorf("Validate(false) error = %v", err)
	}
	if err := cfg.Validate(true); !errors.Is(err, ErrMissingBotToken) {
		t.Errorf("Validate(true) error = %v, want ErrMissingBotToken", err)
	}
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)

	t.Setenv("TELEGRAM_TOKEN", " 123:abc ")
	t.Setenv("TELEGRAM_DEBUG", "true")
	t.Setenv("TELEGRAM_WEBHOOK_URL", "https://bot.example.org/telegram/webhook")
	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "hook_secret")
	t.Setenv("HTTP_API_TOKEN", " api-token ")
	t.Setenv("MVA_NEWS_URL", "https://mva.gov.ua/news")
	t.Setenv("RSS_CITY_DNIPRO", "https://dniprorada.gov.ua/rss")
	t.Setenv("FACEBOOK_PAGE_ID", "12345")
	t.Setenv("FACEBOOK_TOKEN", "page-token")
	t.Setenv("FACEBOOK_POST_LIMIT", "7")
	t.Setenv("RSS_TIMEOUT", "5s")

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("Telegram.Token = %q, want trimmed 123:abc", cfg.Telegram.Token)
	}
	if !cfg.Telegram.Debug {
		t.Error("Telegram.Debug = false, want true")
	}
	if !cfg.WebhookMode() {
		t.Error("WebhookMode() = false with webhook URL set")
	}
	if cfg.Telegram.WebhookSecret != "hook_secret" || cfg.HTTP.APIToken != "api-token" {
		t.Errorf("WebhookSecret = %q, APIToken = %q", cfg.Telegram.WebhookSecret, cfg.HTTP.APIToken)
	}
	if cfg.NewsPage.URL != "https://mva.gov.ua/news" {
		t.Errorf("NewsPage.URL = %q", cfg.NewsPage.URL)
	}
	if cfg.RSS.CityDnipro != "https://dniprorada.gov.ua/rss" {
		t.Errorf("RSS.CityDnipro = %q", cfg.RSS.CityDnipro)
	}
	if cfg.Facebook.PageID != "12345" || cfg.Facebook.Token != "page-token" {
		t.Errorf("Facebook = %+v", cfg.Facebook)
	}
	if cfg.Facebook.PostLimit != 7 {
		t.Errorf("Facebook.PostLimit = %d, want 7", cfg.Facebook.PostLimit)
	}
	if cfg.RSS.Timeout != 5*time.Second {
		t.Errorf("RSS.Timeout = %v, want 5s", cfg.RSS.Timeout)
	}

	if err := cfg.Validate(true); err != nil {
		t.Errorf("Validate(true) error = %v", err)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "bot.yaml")
	content := `
rss:
  city_dnipro: https://file.example.org/rss
  limit: 3
news_page:
  url: https://file.example.org/news
http:
  listen_addr: ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	// Environment wins over the file
	t.Setenv("MVA_NEWS_URL", "https://env.example.org/news")

	cfg, err := Load(Options{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RSS.CityDnipro != "https://file.example.org/rss" || cfg.RSS.Limit != 3 {
		t.Errorf("RSS = %+v", cfg.RSS)
	}
	if cfg.NewsPage.URL != "https://env.example.org/news" {
		t.Errorf("NewsPage.URL = %q, want environment value", cfg.NewsPage.URL)
	}
	if cfg.HTTP.ListenAddr != ":9090" {
		t.Errorf("HTTP.ListenAddr = %q, want :9090", cfg.HTTP.ListenAddr)
	}
	if cfg.NewsPage.Limit != 6 {
		t.Errorf("NewsPage.Limit = %d, want default 6", cfg.NewsPage.Limit)
	}
}

func TestLoad_DefaultConfigFile(t *testing.T) {
	isolate(t)

	if err := os.WriteFile(DefaultConfigFile, []byte("facebook:\n  page_id: from-file\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Facebook.PageID != "from-file" {
		t.Errorf("Facebook.PageID = %q, want from-file", cfg.Facebook.PageID)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := isolate(t)

	content := "TELEGRAM_TOKEN=from-dotenv\nRSS_MINVETERANS=https://mva.gov.ua/rss\n"
	if err := os.WriteFile(filepath.Join(dir, DefaultEnvFile), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	// Variables already set are not overridden by the dotenv file
	t.Setenv("TELEGRAM_TOKEN", "from-environment")

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.Token != "from-environment" {
		t.Errorf("Telegram.Token = %q, want from-environment", cfg.Telegram.Token)
	}
	if cfg.RSS.MinVeterans != "https://mva.gov.ua/rss" {
		t.Errorf("RSS.MinVeterans = %q, want dotenv value", cfg.RSS.MinVeterans)
	}
}

func TestLoad_MissingExplicitFiles(t *testing.T) {
	isolate(t)

	if _, err := Load(Options{ConfigPath: "missing.yaml"}); err == nil {
		t.Error("Load() with missing config file should fail")
	}
	if _, err := Load(Options{EnvFile: "missing.env"}); err == nil {
		t.Error("Load() with missing env file should fail")
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	isolate(t)
	t.Setenv("RSS_LIMIT", "many")

	if _, err := Load(Options{}); err == nil {
		t.Error("Load() with non-numeric RSS_LIMIT should fail")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Telegram: TelegramConfig{Token: "t", PollTimeout: 60},
			RSS:      RSSConfig{Limit: 5, Timeout: time.Second},
			NewsPage: NewsPageConfig{Limit: 6, Timeout: time.Second},
			Facebook: FacebookConfig{PostLimit: 5, Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero rss limit", mutate: func(c *Config) { c.RSS.Limit = 0 }, wantErr: true},
		{name: "negative news limit", mutate: func(c *Config) { c.NewsPage.Limit = -1 }, wantErr: true},
		{name: "zero facebook limit", mutate: func(c *Config) { c.Facebook.PostLimit = 0 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Facebook.Timeout = 0 }, wantErr: true},
		{name: "negative facebook interval", mutate: func(c *Config) { c.Facebook.MinInterval = -time.Second }, wantErr: true},
		{name: "webhook url", mutate: func(c *Config) { c.Telegram.WebhookURL = "https://bot.example.org/telegram/webhook" }},
		{name: "webhook secret", mutate: func(c *Config) { c.Telegram.WebhookSecret = "abc_DEF-123" }},
		{name: "webhook secret with invalid characters", mutate: func(c *Config) { c.Telegram.WebhookSecret = "not a secret!" }, wantErr: true},
		{name: "webhook secret too long", mutate: func(c *Config) { c.Telegram.WebhookSecret = strings.Repeat("a", 257) }, wantErr: true},
		{name: "relative webhook url", mutate: func(c *Config) { c.Telegram.WebhookURL = "/telegram/webhook" }, wantErr: true},
		{name: "negative poll timeout", mutate: func(c *Config) { c.Telegram.PollTimeout = -1 }, wantErr: true},
		{name: "facebook limit above api maximum is clamped later", mutate: func(c *Config) { c.Facebook.PostLimit = 50 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			if err := cfg.Validate(true); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
